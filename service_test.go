package rtflow_test

import (
	"context"
	"embed"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/viant/afs/embed"
	"github.com/viant/rtflow"
	"github.com/viant/rtflow/internal/allocguard"
	"github.com/viant/rtflow/internal/clock"
	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/observer"
	"github.com/viant/rtflow/service/dao"
	"github.com/viant/rtflow/service/dao/definition"
	"github.com/viant/rtflow/service/event"
	"github.com/viant/rtflow/service/processor"
	"github.com/viant/rtflow/service/scheduler"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/goleak"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

//go:embed testdata/*
var embedFS embed.FS

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newService(options ...rtflow.Option) *rtflow.Service {
	options = append([]rtflow.Option{
		rtflow.WithClock(clock.NewManual(0)),
		rtflow.WithGuard(allocguard.Nop{}),
	}, options...)
	return rtflow.New(options...)
}

func TestService_ScenarioA(t *testing.T) {
	srv := newService()
	_, err := srv.CreateGraph()
	require.NoError(t, err)

	ch, ok := srv.AddChannel(64)
	require.True(t, ok)
	assert.True(t, srv.AddOperatorTyped(1, graph.NoChannel, ch, 10, graph.StageIngest, nil, graph.Schema(1)))
	assert.False(t, srv.AddOperatorTyped(2, ch, graph.NoChannel, 5, graph.StageEmit, graph.Schema(2), nil))

	status := srv.Status()
	assert.Equal(t, 1, status.Operators)
	assert.Equal(t, 1, status.Channels)
	assert.Equal(t, 1, status.Graph.Mismatches)
	assert.Equal(t, float64(1), srv.Metrics().Value("graph.mismatches"))
}

func TestService_ScenarioB(t *testing.T) {
	srv := newService()
	_, err := srv.CreateGraph()
	require.NoError(t, err)

	assert.True(t, srv.EnableDeterministic(50_000, 200_000, 200_000))
	assert.Equal(t, 250, srv.Status().Utilization)
	assert.False(t, srv.EnableDeterministic(140_000, 200_000, 200_000))

	status := srv.Status()
	assert.True(t, status.Deterministic)
	assert.Equal(t, 250, status.Utilization)
	assert.Equal(t, 1, status.Scheduler.Rejected)
	require.NotNil(t, status.Server)
	assert.Equal(t, 50*time.Microsecond, status.Server.Spec.WCET)
	assert.Equal(t, float64(1), srv.Metrics().Value("scheduler.rejections"))
	assert.NoError(t, srv.Close(context.Background()))
}

func TestService_NoGraph(t *testing.T) {
	srv := newService()
	_, ok := srv.AddChannel(1)
	assert.False(t, ok)
	_, ok = srv.AddOperator(1, graph.NoChannel, graph.NoChannel, 1, graph.StageControl)
	assert.False(t, ok)
	assert.False(t, srv.AddOperatorTyped(1, graph.NoChannel, graph.NoChannel, 1, graph.StageControl, nil, nil))
	assert.False(t, srv.EnableDeterministic(50_000, 200_000, 200_000))
	assert.False(t, srv.DisableDeterministic())
	assert.False(t, srv.ResetOverruns())
	_, err := srv.StartGraph(context.Background(), 1)
	assert.ErrorIs(t, err, rtflow.ErrNoGraph)

	_, err = srv.CreateGraph()
	require.NoError(t, err)
	_, err = srv.CreateGraph()
	assert.ErrorIs(t, err, rtflow.ErrGraphExists)
}

func TestService_StartGraph(t *testing.T) {
	srv := newService()
	id, err := srv.CreateGraph()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)

	report, err := srv.StartGraph(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Steps)

	report, err = srv.StartGraph(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Steps)
	assert.Equal(t, processor.StopStarved, report.Stop)

	_, ok := srv.AddOperator(1, graph.NoChannel, graph.NoChannel, 1, graph.StageControl)
	require.True(t, ok)
	report, err = srv.StartGraph(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Steps)
	assert.Equal(t, processor.StopCompleted, report.Stop)
}

func TestService_Definition(t *testing.T) {
	ctx := context.Background()
	srv := newService(
		rtflow.WithMetaFsOptions(&embedFS),
		rtflow.WithMetaBaseURL("embed:///testdata"),
	)

	def, err := srv.LoadDefinition(ctx, "camera.yaml")
	require.NoError(t, err)
	err = srv.Apply(ctx, def)
	// publish declares schema 3 on a channel bound to 2
	require.Error(t, err)
	assert.ErrorIs(t, err, rtflow.ErrOperatorRejected)

	status := srv.Status()
	assert.Equal(t, 2, status.Operators)
	assert.Equal(t, 2, status.Channels)
	assert.Equal(t, 1, status.Graph.Mismatches)
	assert.True(t, status.Deterministic)
	assert.Equal(t, 250, status.Utilization)

	report, err := srv.StartGraph(ctx, def.Steps)
	require.NoError(t, err)
	assert.Equal(t, 16, report.Steps)
	assert.Equal(t, processor.StopCompleted, report.Stop)

	snapshot := srv.Metrics()
	assert.Equal(t, float64(8), snapshot.Value("channel.0.depth"))
	assert.Equal(t, float64(4), snapshot.Value("channel.1.depth"))
	assert.Equal(t, 16, snapshot.Events[observer.OperatorStart])
	assert.Equal(t, float64(0), snapshot.Value("graph.overruns"))
}

func TestService_DefinitionPipeline(t *testing.T) {
	ctx := context.Background()
	srv := newService()
	def, err := srv.LoadDefinition(ctx, "mem://localhost/missing.yaml")
	assert.ErrorIs(t, err, dao.ErrNotFound)
	assert.Nil(t, def)
}

func TestService_ApplyRejectedChannel(t *testing.T) {
	cfg := rtflow.DefaultConfig()
	cfg.Graph.MaxChannels = 1
	srv := newService(rtflow.WithConfig(cfg))
	def := &definition.Definition{
		Name: "wiring",
		Channels: []*definition.Channel{
			{Name: "a", Capacity: 4},
			{Name: "b", Capacity: 4},
		},
		Operators: []*definition.Operator{
			{Name: "src", ID: 1, Body: "source", Out: "b"},
			{Name: "drain", ID: 2, Body: "sink", In: "a"},
		},
	}
	err := srv.Apply(context.Background(), def)
	require.Error(t, err)
	assert.ErrorIs(t, err, rtflow.ErrChannelRejected)
	assert.ErrorIs(t, err, rtflow.ErrOperatorRejected)
	assert.Contains(t, err.Error(), "operator src")

	status := srv.Status()
	assert.Equal(t, 1, status.Channels)
	assert.Equal(t, 1, status.Operators, "an operator bound to a rejected channel is not registered")

	report, err := srv.StartGraph(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, processor.StopStarved, report.Stop)
	assert.Equal(t, 0, report.Steps)
	assert.Equal(t, 0, report.BodyErrors)
}

func TestService_DrainAudit(t *testing.T) {
	srv := newService()
	_, err := srv.CreateGraph()
	require.NoError(t, err)
	ch, _ := srv.AddChannel(2)
	require.True(t, srv.AddOperatorSpec(graph.OperatorSpec{
		ID: 1, Name: "fill", Priority: 1, In: graph.NoChannel, Out: ch,
		Body: graph.BodyFunc(func(_ context.Context, _ *graph.Channel, out *graph.Channel) error {
			out.TryEnqueue(7)
			return nil
		}),
	}, false))

	report, err := srv.StartGraph(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Steps)

	var kinds []observer.Kind
	var last uint64
	n := srv.DrainAudit(func(record event.Record) {
		assert.Greater(t, record.Seq, last)
		last = record.Seq
		kinds = append(kinds, record.Kind)
	})
	assert.Equal(t, 8, n)
	assert.Equal(t, []observer.Kind{
		observer.OperatorQueued, observer.OperatorStart, observer.ChannelDepthChanged, observer.OperatorEnd,
		observer.OperatorQueued, observer.OperatorStart, observer.ChannelDepthChanged, observer.OperatorEnd,
	}, kinds)
	assert.Equal(t, 0, srv.DrainAudit(func(event.Record) {}))
}

func TestService_DeterministicOverrun(t *testing.T) {
	clk := clock.NewManual(0)
	srv := newService(rtflow.WithClock(clk))
	_, err := srv.CreateGraph()
	require.NoError(t, err)
	require.True(t, srv.AddOperatorSpec(graph.OperatorSpec{
		ID: 1, Name: "slow", Priority: 1, In: graph.NoChannel, Out: graph.NoChannel,
		Body: graph.BodyFunc(func(context.Context, *graph.Channel, *graph.Channel) error {
			clk.Advance(80 * time.Microsecond)
			return nil
		}),
	}, false))
	require.True(t, srv.EnableDeterministic(50*time.Microsecond, 200*time.Microsecond, 200*time.Microsecond))

	report, err := srv.StartGraph(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Steps)
	assert.Equal(t, processor.StopNotEligible, report.Stop)

	status := srv.Status()
	assert.Equal(t, 1, status.Graph.Overruns)
	assert.Equal(t, 1, status.Scheduler.Overruns)
	assert.Equal(t, scheduler.StateDepleted, status.Server.State)

	assert.True(t, srv.ResetOverruns())
	assert.Equal(t, 0, srv.Status().Graph.Overruns)

	assert.True(t, srv.DisableDeterministic())
	report, err = srv.StartGraph(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Steps)
	assert.Equal(t, 0, srv.Status().Graph.Overruns)
	assert.NoError(t, srv.Close(context.Background()))
}

func TestService_DeadlineMissMetric(t *testing.T) {
	clk := clock.NewManual(0)
	srv := newService(rtflow.WithClock(clk))
	_, err := srv.CreateGraph()
	require.NoError(t, err)
	require.True(t, srv.EnableDeterministic(10*time.Microsecond, 100*time.Microsecond, 50*time.Microsecond))

	clk.Set(60 * time.Microsecond)
	_, err = srv.StartGraph(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, float64(1), srv.Metrics().Value("scheduler.deadline_misses"))
	assert.Equal(t, 1, srv.Status().Scheduler.Misses)

	clk.Set(time.Millisecond)
	_, err = srv.StartGraph(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, float64(10), srv.Metrics().Value("scheduler.deadline_misses"), "windows 100us..900us closed unserved")
	assert.Equal(t, 10, srv.Status().Scheduler.Misses)
}

func TestService_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	srv := newService(rtflow.WithTracer(provider.Tracer("test")))
	_, err := srv.CreateGraph()
	require.NoError(t, err)
	require.True(t, srv.AddOperatorSpec(graph.OperatorSpec{ID: 1, Name: "tick", Priority: 1, In: graph.NoChannel, Out: graph.NoChannel}, false))

	_, err = srv.StartGraph(context.Background(), 2)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "operator tick", spans[0].Name)
	assert.Equal(t, "operator tick", spans[1].Name)
	run := spans[2]
	assert.Equal(t, "graph.run", run.Name)
	assert.Equal(t, run.SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Contains(t, run.Attributes, attribute.Int("steps", 2))
	assert.Contains(t, run.Attributes, attribute.String("stop", "completed"))
}
