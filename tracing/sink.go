package tracing

import (
	"context"

	"github.com/viant/rtflow/observer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Sink maps execution events onto OpenTelemetry spans: every operator
// execution is one span, depth changes, misses and overruns are span events.
// It keeps the in-flight operator span, so it is bound to one execution loop.
type Sink struct {
	tracer trace.Tracer
	active trace.Span
}

// NewSink creates a sink; a nil tracer falls back to the global provider
func NewSink(tracer trace.Tracer) *Sink {
	if tracer == nil {
		tracer = Tracer()
	}
	return &Sink{tracer: tracer}
}

// Metric attaches the value to the in-flight operator span, if any
func (s *Sink) Metric(name string, value float64) {
	if s.active == nil {
		return
	}
	s.active.SetAttributes(attribute.Float64(name, value))
}

// Trace implements observer.Sink
func (s *Sink) Trace(ctx context.Context, event observer.Event) {
	switch event.Kind {
	case observer.OperatorStart:
		if s.active != nil {
			s.active.End()
		}
		_, s.active = s.tracer.Start(ctx, "operator "+event.Name,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.Int64("graph.id", int64(event.Graph)),
				attribute.Int("operator.index", event.Operator),
			))
	case observer.OperatorEnd:
		if s.active == nil {
			return
		}
		s.active.SetAttributes(attribute.Int64("elapsed_ns", int64(event.Elapsed)))
		if event.Err != nil {
			s.active.RecordError(event.Err)
			s.active.SetStatus(codes.Error, event.Err.Error())
		} else {
			s.active.SetStatus(codes.Ok, "")
		}
		s.active.End()
		s.active = nil
	case observer.ChannelDepthChanged, observer.DeadlineMiss, observer.Overrun:
		attrs := trace.WithAttributes(
			attribute.Int("channel", event.Channel),
			attribute.Int("depth", event.Depth),
			attribute.Int64("elapsed_ns", int64(event.Elapsed)),
		)
		if s.active != nil {
			s.active.AddEvent(event.Kind.String(), attrs)
			return
		}
		_, span := s.tracer.Start(ctx, event.Kind.String(), trace.WithAttributes(attribute.Int64("graph.id", int64(event.Graph))))
		span.AddEvent(event.Kind.String(), attrs)
		span.End()
	}
}

var _ observer.Sink = (*Sink)(nil)
