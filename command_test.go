package rtflow_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rtflow"
	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/policy"
	"github.com/viant/rtflow/service/processor"
	"github.com/viant/rtflow/service/scheduler"
)

func TestService_Handle(t *testing.T) {
	ctx := context.Background()
	srv := newService()

	steps := []struct {
		description string
		command     rtflow.Command
		expectOK    bool
		expectErr   error
		check       func(t *testing.T, resp rtflow.Response)
	}{
		{
			description: "start before create",
			command:     rtflow.Command{Kind: rtflow.CommandStartGraph, Steps: 1},
			expectErr:   rtflow.ErrNoGraph,
		},
		{
			description: "create graph",
			command:     rtflow.Command{Kind: rtflow.CommandCreateGraph},
			expectOK:    true,
			check: func(t *testing.T, resp rtflow.Response) {
				assert.Equal(t, uint32(1), resp.GraphID)
			},
		},
		{
			description: "add channel",
			command:     rtflow.Command{Kind: rtflow.CommandAddChannel, Capacity: 4},
			expectOK:    true,
			check: func(t *testing.T, resp rtflow.Response) {
				assert.Equal(t, graph.ChannelID(0), resp.Channel)
			},
		},
		{
			description: "add typed producer",
			command: rtflow.Command{Kind: rtflow.CommandAddOperatorTyped, OperatorID: 1, In: graph.NoChannel, Out: 0,
				Priority: 10, Stage: graph.StageIngest, OutSchema: graph.Schema(1)},
			expectOK: true,
		},
		{
			description: "reject mismatched consumer",
			command: rtflow.Command{Kind: rtflow.CommandAddOperatorTyped, OperatorID: 2, In: 0, Out: graph.NoChannel,
				Priority: 5, Stage: graph.StageEmit, InSchema: graph.Schema(2)},
			expectErr: rtflow.ErrOperatorRejected,
		},
		{
			description: "reject out of range port",
			command:     rtflow.Command{Kind: rtflow.CommandAddOperator, OperatorID: 3, In: 9, Out: graph.NoChannel},
			expectErr:   rtflow.ErrOperatorRejected,
		},
		{
			description: "enable deterministic",
			command:     rtflow.Command{Kind: rtflow.CommandEnableDeterministic, WCET: 50_000, Period: 200_000, Deadline: 200_000},
			expectOK:    true,
		},
		{
			description: "second admission over the bound",
			command:     rtflow.Command{Kind: rtflow.CommandEnableDeterministic, WCET: 140_000, Period: 200_000, Deadline: 200_000},
			expectErr:   scheduler.ErrUtilizationExceeded,
		},
		{
			description: "invalid task spec",
			command:     rtflow.Command{Kind: rtflow.CommandEnableDeterministic, WCET: 0, Period: 200_000, Deadline: 200_000},
			expectErr:   scheduler.ErrInvalidSpec,
		},
		{
			description: "run",
			command:     rtflow.Command{Kind: rtflow.CommandStartGraph, Steps: 3},
			expectOK:    true,
			check: func(t *testing.T, resp rtflow.Response) {
				require.NotNil(t, resp.Report)
				// producer has no body: it is always runnable and never fills the channel
				assert.Equal(t, 3, resp.Report.Steps)
				assert.Equal(t, processor.StopCompleted, resp.Report.Stop)
			},
		},
		{
			description: "disable deterministic",
			command:     rtflow.Command{Kind: rtflow.CommandDisableDeterministic},
			expectOK:    true,
		},
		{
			description: "reset overruns",
			command:     rtflow.Command{Kind: rtflow.CommandResetOverruns},
			expectOK:    true,
		},
		{
			description: "status",
			command:     rtflow.Command{Kind: rtflow.CommandStatus},
			expectOK:    true,
			check: func(t *testing.T, resp rtflow.Response) {
				require.NotNil(t, resp.Status)
				assert.Equal(t, 1, resp.Status.Operators)
				assert.Equal(t, 1, resp.Status.Graph.Mismatches)
				assert.Equal(t, 1, resp.Status.Graph.OutOfRange)
				assert.False(t, resp.Status.Deterministic)
				assert.Equal(t, 2, resp.Status.Scheduler.Rejected)
			},
		},
		{
			description: "unknown",
			command:     rtflow.Command{Kind: rtflow.CommandKind(99)},
			expectErr:   rtflow.ErrUnknownCommand,
		},
	}

	for _, step := range steps {
		resp := srv.Handle(ctx, step.command)
		assert.Equal(t, step.expectOK, resp.OK, step.description)
		if step.expectErr != nil {
			assert.ErrorIs(t, resp.Err, step.expectErr, step.description)
		} else {
			assert.NoError(t, resp.Err, step.description)
		}
		if step.check != nil {
			t.Run(step.description, func(t *testing.T) { step.check(t, resp) })
		}
	}
}

func TestCommandKind_String(t *testing.T) {
	assert.Equal(t, "startGraph", rtflow.CommandStartGraph.String())
	assert.Equal(t, "unknown", rtflow.CommandKind(-1).String())
	assert.Equal(t, "unknown", rtflow.CommandKind(42).String())
}

func TestService_HandlePolicy(t *testing.T) {
	ctx := context.Background()
	srv := newService(rtflow.WithPolicy(&policy.Policy{BlockList: []string{"enableDeterministic"}}))

	resp := srv.Handle(ctx, rtflow.Command{Kind: rtflow.CommandCreateGraph})
	require.True(t, resp.OK)

	resp = srv.Handle(ctx, rtflow.Command{Kind: rtflow.CommandEnableDeterministic, WCET: 50_000, Period: 200_000, Deadline: 200_000})
	assert.False(t, resp.OK)
	assert.ErrorIs(t, resp.Err, rtflow.ErrCommandDenied)
	status := srv.Status()
	assert.Equal(t, 0, status.Utilization)
	require.NotNil(t, status.Policy)
	assert.Equal(t, []string{"enableDeterministic"}, status.Policy.BlockList)

	sealed := policy.WithPolicy(ctx, &policy.Policy{Mode: policy.ModeDeny})
	resp = srv.Handle(sealed, rtflow.Command{Kind: rtflow.CommandStatus})
	assert.ErrorIs(t, resp.Err, rtflow.ErrCommandDenied)
}
