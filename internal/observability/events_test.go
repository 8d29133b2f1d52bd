package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/trace"
)

func TestBuildHeadersSkipsEmptyValues(t *testing.T) {
	assert.Equal(t, map[string]string{"x-request-id": "r1"}, BuildHeaders("r1", ""))
	assert.Empty(t, BuildHeaders("", ""))
}

func TestHeadersFromContextAddsTraceID(t *testing.T) {
	traceID := trace.TraceID{1, 2, 3}
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: trace.SpanID{1}})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = WithHeaders(ctx, BuildHeaders("r1", ""))

	headers := HeadersFromContext(ctx)
	assert.Equal(t, "r1", headers["x-request-id"])
	assert.Equal(t, traceID.String(), headers["trace_id"])
}

func TestHeadersFromContextWithoutAnything(t *testing.T) {
	assert.Empty(t, HeadersFromContext(context.Background()))
}
