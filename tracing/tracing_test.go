package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rtflow/observer"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestSink() (*Sink, *tracetest.InMemoryExporter) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return NewSink(provider.Tracer("test")), exporter
}

func TestSink_OperatorSpan(t *testing.T) {
	sink, exporter := newTestSink()
	ctx := context.Background()

	sink.Trace(ctx, observer.Event{Kind: observer.OperatorStart, Graph: 1, Operator: 2, Name: "relay"})
	sink.Trace(ctx, observer.Event{Kind: observer.ChannelDepthChanged, Channel: 0, Depth: 3})
	sink.Metric("queue.depth", 3)
	sink.Trace(ctx, observer.Event{Kind: observer.OperatorEnd, Operator: 2, Elapsed: 1500})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "operator relay", span.Name)
	require.Len(t, span.Events, 1)
	assert.Equal(t, "channel.depth", span.Events[0].Name)
	assert.Equal(t, codes.Ok, span.Status.Code)
}

func TestSink_ErrorStatus(t *testing.T) {
	sink, exporter := newTestSink()
	ctx := context.Background()
	sink.Trace(ctx, observer.Event{Kind: observer.OperatorStart, Name: "faulty"})
	sink.Trace(ctx, observer.Event{Kind: observer.OperatorEnd, Err: errors.New("boom")})
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "boom", spans[0].Status.Description)
}

func TestSink_StandaloneEvent(t *testing.T) {
	sink, exporter := newTestSink()
	sink.Trace(context.Background(), observer.Event{Kind: observer.DeadlineMiss, Graph: 4})
	sink.Trace(context.Background(), observer.Event{Kind: observer.OperatorEnd})
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "deadline.miss", spans[0].Name)
}

func TestStartSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	tracer := provider.Tracer("test")

	ctx, run := StartSpan(context.Background(), tracer, "graph.run")
	run.WithAttributes(map[string]string{"stop": "completed"}).WithInt("steps", 3)
	_, child := StartSpan(ctx, tracer, "child")
	EndSpan(child, errors.New("boom"))
	EndSpan(run, nil)
	EndSpan(nil, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
	assert.Contains(t, spans[1].Attributes, attribute.Int("steps", 3))
	assert.Contains(t, spans[1].Attributes, attribute.String("stop", "completed"))
}

func TestInit_OutputFile(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, Init("svc", "v1", filepath.Join(dir, "missing", "trace.json")))
	assert.Nil(t, output)

	require.NoError(t, Init("svc", "v1", filepath.Join(dir, "trace.json")))
	f := output
	require.NotNil(t, f)
	require.NoError(t, Init("svc", "v2", filepath.Join(dir, "other.json")))
	assert.Equal(t, f, output, "the first initialisation wins")

	_, span := StartSpan(context.Background(), nil, "graph.run")
	EndSpan(span, nil)
	require.NoError(t, Shutdown(context.Background()))
	assert.Nil(t, output)
	_, err := f.WriteString("x")
	assert.ErrorIs(t, err, os.ErrClosed)

	data, err := os.ReadFile(filepath.Join(dir, "trace.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "graph.run")
}
