package sortedconv

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "sortedconv"

// WithTracerProvider sets where converter spans go. Without it the global
// provider is used at conversion time.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) {
		s.tracerProvider = tp
	}
}

// startSpan opens the span for one container conversion. The caller must
// end it with endSpan.
//
//nolint:spancheck
func (s settings) startSpan(ctx context.Context, op, kind string) (context.Context, trace.Span) {
	tp := s.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return tp.Tracer(tracerName).Start(ctx, "sortedconv."+op,
		trace.WithAttributes(attribute.String("kind", kind)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End()
}

func spanPopulation(span trace.Span, outcome Outcome, path Path, elements int) {
	span.SetAttributes(
		attribute.String("rule", outcome.String()),
		attribute.String("path", path.String()),
		attribute.Int("elements", elements),
	)
}
