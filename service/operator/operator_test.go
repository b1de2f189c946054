package operator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/service/operator/nop"
	"github.com/viant/rtflow/service/operator/printer"
	"github.com/viant/rtflow/service/operator/relay"
	"github.com/viant/rtflow/service/operator/sink"
	"github.com/viant/rtflow/service/operator/source"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPipeline(t *testing.T) {
	ctx := context.Background()
	a := graph.NewChannel(0, 2)
	b := graph.NewChannel(1, 1)

	src := source.New(100)
	require.NoError(t, src.Execute(ctx, nil, a))
	require.NoError(t, src.Execute(ctx, nil, a))
	require.NoError(t, src.Execute(ctx, nil, a))
	assert.Equal(t, 2, src.Emitted)
	assert.Equal(t, 1, src.Blocked)

	rl := relay.New()
	require.NoError(t, rl.Execute(ctx, a, b))
	require.NoError(t, rl.Execute(ctx, a, b))
	assert.Equal(t, 1, rl.Forwarded, "full output keeps the handle upstream")
	assert.Equal(t, 1, a.Depth())

	sn := sink.New()
	require.NoError(t, sn.Execute(ctx, b, nil))
	require.NoError(t, sn.Execute(ctx, b, nil))
	assert.Equal(t, 1, sn.Consumed)
	assert.EqualValues(t, 100, sn.Last)

	assert.NoError(t, nop.New().Execute(ctx, nil, nil))
}

func TestUnboundPorts(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, source.New(0).Execute(ctx, nil, nil), source.ErrNoOutput)
	assert.ErrorIs(t, relay.New().Execute(ctx, nil, nil), relay.ErrUnbound)
	assert.ErrorIs(t, sink.New().Execute(ctx, nil, nil), sink.ErrNoInput)
}

func TestPrinter(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := printer.New(zap.New(core))
	in := graph.NewChannel(0, 2)
	out := graph.NewChannel(1, 2)
	in.TryEnqueue(7)
	require.NoError(t, p.Execute(context.Background(), in, out))
	assert.Equal(t, 1, logs.Len())
	h, ok := out.TryDequeue()
	require.True(t, ok)
	assert.EqualValues(t, 7, h)
	require.NoError(t, p.Execute(context.Background(), in, nil))
	assert.Equal(t, 1, logs.Len())
}
