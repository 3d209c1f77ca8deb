package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newRecordingTracerProvider returns a tracer provider that samples
// everything, so tests can observe span contexts.
func newRecordingTracerProvider(t *testing.T) *sdktrace.TracerProvider {
	t.Helper()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp
}

func TestGetTraceIDWithoutSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Empty(t, GetSpanID(context.Background()))
}

func TestGetTraceIDWithSpan(t *testing.T) {
	tp := newRecordingTracerProvider(t)
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	require.NotEmpty(t, GetTraceID(ctx))
	require.NotEmpty(t, GetSpanID(ctx))
	assert.Equal(t, span.SpanContext().TraceID().String(), GetTraceID(ctx))
}

func TestSetSpanError(t *testing.T) {
	tp := newRecordingTracerProvider(t)
	_, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	// Must not panic with either a real error or nil.
	SetSpanError(span, errors.New("boom"))
	SetSpanError(span, nil)
	SetSpanSuccess(span)
}

func TestWithSpanContextCapturesIDs(t *testing.T) {
	tp := newRecordingTracerProvider(t)
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	ti := NewToolInvocation("fleep_send_message").WithSpanContext(ctx)
	assert.Equal(t, span.SpanContext().TraceID().String(), ti.TraceID)
	assert.Equal(t, span.SpanContext().SpanID().String(), ti.SpanID)
	assert.True(t, span.SpanContext().IsValid())
}
