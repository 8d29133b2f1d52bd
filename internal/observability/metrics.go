package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondhub_http_requests_total",
			Help: "Total number of HTTP requests processed by the node.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bondhub_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bondhub_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondhub_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bondhub_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	remoteFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondhub_remote_failures_total",
			Help: "Remote store calls that returned an error, by operation.",
		},
		[]string{"op"},
	)
	cacheFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondhub_cache_fallbacks_total",
			Help: "Reads served from the local cache because the remote store failed.",
		},
		[]string{"op"},
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondhub_notifications_total",
			Help: "Push notifications by stage and outcome.",
		},
		[]string{"stage", "outcome"},
	)
	avatarFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bondhub_avatar_fetches_total",
			Help: "Sender avatar loads by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
		remoteFailuresTotal,
		cacheFallbacksTotal,
		notificationsTotal,
		avatarFetchesTotal,
	)
}

// MetricsHandler serves the default registry.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		statusInfo := status.Convert(err)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, statusInfo.Code().String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func IncRemoteFailure(op string) {
	remoteFailuresTotal.WithLabelValues(op).Inc()
}

func IncCacheFallback(op string) {
	cacheFallbacksTotal.WithLabelValues(op).Inc()
}

// IncNotification records a notification outcome. Stage is "dispatch" on
// the backend side and "deliver" on the device side.
func IncNotification(stage, outcome string) {
	notificationsTotal.WithLabelValues(stage, outcome).Inc()
}

func IncAvatarFetch(result string) {
	avatarFetchesTotal.WithLabelValues(result).Inc()
}
