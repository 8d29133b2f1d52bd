package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func status(t *testing.T, c *Checker, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := c.server.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestCheckerFlipsStatusWithProbes(t *testing.T) {
	server, hs := NewServer()
	defer server.Stop()

	healthy := true
	checker := NewChecker(hs, 0, zap.NewNop(),
		Probe{Name: "cache", Check: func(context.Context) error { return nil }},
		Probe{Name: "remote", Check: func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		}},
	)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, checker.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, checker, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, checker, Service))

	healthy = false
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, checker.Check(context.Background()))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, checker, Service))
}

func TestRunLeavesNotServingOnExit(t *testing.T) {
	_, hs := NewServer()
	checker := NewChecker(hs, time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checker.Run(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, checker, ""))
}
