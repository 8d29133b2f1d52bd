// Package health exposes grpc.health.v1 for the node, with the serving
// status driven by periodic dependency probes.
package health

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"bondhub/internal/observability"
)

// Service is the name probes report under, besides the overall "" entry.
const Service = "bondhub"

const probeTimeout = 3 * time.Second

// Probe checks one dependency.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewServer builds the gRPC server with the health service registered.
func NewServer() (*grpc.Server, *grpchealth.Server) {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(observability.GRPCServerMetricsUnaryInterceptor()),
	)
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	return server, hs
}

// Checker runs probes and publishes the result on the health server.
type Checker struct {
	server   *grpchealth.Server
	probes   []Probe
	interval time.Duration
	log      *zap.Logger
}

func NewChecker(server *grpchealth.Server, interval time.Duration, log *zap.Logger, probes ...Probe) *Checker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Checker{server: server, probes: probes, interval: interval, log: log}
}

// Run probes immediately and then on every interval until ctx is done,
// leaving the server NOT_SERVING on exit.
func (c *Checker) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		c.Check(ctx)
		select {
		case <-ctx.Done():
			c.set(healthpb.HealthCheckResponse_NOT_SERVING)
			return
		case <-ticker.C:
		}
	}
}

// Check runs every probe once. Any failure makes the node NOT_SERVING.
func (c *Checker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, p := range c.probes {
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := p.Check(pctx)
		cancel()
		if err != nil {
			c.log.Warn("health probe failed", zap.String("probe", p.Name), zap.Error(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	c.set(status)
	return status
}

func (c *Checker) set(status healthpb.HealthCheckResponse_ServingStatus) {
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(Service, status)
}
