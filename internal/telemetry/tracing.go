package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps the otel tracer. The CLI uses it for one span around the
// whole simulation run; Tick and Dispatch calls get no spans of their own.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer builds a Tracer from a TracerProvider, falling back to the
// global no-op provider when none is supplied.
func NewTracer(provider trace.TracerProvider) Tracer {
	if provider == nil {
		provider = trace.NewNoopTracerProvider()
	}

	return Tracer{tracer: provider.Tracer("dispatchsim")}
}

// StartSpan starts a span for name and returns the updated context plus an
// end function callers should defer.
func (t Tracer) StartSpan(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, name)

	return ctx, func() { span.End() }
}
