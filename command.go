package rtflow

import (
	"context"
	"time"

	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/policy"
	"github.com/viant/rtflow/service/processor"
	"github.com/viant/rtflow/service/scheduler"
	"go.uber.org/zap"
)

// CommandKind selects the control plane operation
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandCreateGraph
	CommandAddChannel
	CommandAddOperator
	CommandAddOperatorTyped
	CommandStartGraph
	CommandEnableDeterministic
	CommandDisableDeterministic
	CommandResetOverruns
	CommandStatus
)

var commandNames = [...]string{
	CommandUnknown:              "unknown",
	CommandCreateGraph:          "createGraph",
	CommandAddChannel:           "addChannel",
	CommandAddOperator:          "addOperator",
	CommandAddOperatorTyped:     "addOperatorTyped",
	CommandStartGraph:           "startGraph",
	CommandEnableDeterministic:  "enableDeterministic",
	CommandDisableDeterministic: "disableDeterministic",
	CommandResetOverruns:        "resetOverruns",
	CommandStatus:               "status",
}

func (k CommandKind) String() string {
	if k < 0 || int(k) >= len(commandNames) {
		return commandNames[CommandUnknown]
	}
	return commandNames[k]
}

// Command is a decoded control plane request. Unused ports must be set to
// graph.NoChannel.
type Command struct {
	Kind       CommandKind
	Capacity   int
	OperatorID uint32
	In         graph.ChannelID
	Out        graph.ChannelID
	Priority   int
	Stage      graph.Stage
	InSchema   *graph.SchemaID
	OutSchema  *graph.SchemaID
	Steps      int
	WCET       time.Duration
	Period     time.Duration
	Deadline   time.Duration
}

// Response carries the outcome of a Command
type Response struct {
	OK       bool
	GraphID  uint32
	Channel  graph.ChannelID
	Operator graph.OperatorID
	Report   *processor.Report
	Status   *Status
	Err      error
}

// Handle dispatches cmd to the matching control plane operation. The policy
// carried by ctx, or the configured one, is consulted first.
func (s *Service) Handle(ctx context.Context, cmd Command) Response {
	p := policy.FromContext(ctx)
	if p == nil {
		p = s.policy
	}
	if !p.Permit(ctx, cmd.Kind.String()) {
		s.logger.Warn("command denied", zap.Stringer("command", cmd.Kind))
		return Response{Err: ErrCommandDenied}
	}
	switch cmd.Kind {
	case CommandCreateGraph:
		id, err := s.CreateGraph()
		return Response{OK: err == nil, GraphID: id, Err: err}
	case CommandAddChannel:
		id, ok := s.AddChannel(cmd.Capacity)
		return Response{OK: ok, Channel: id, Err: rejected(ok, ErrChannelRejected)}
	case CommandAddOperator:
		index, ok := s.AddOperator(cmd.OperatorID, cmd.In, cmd.Out, cmd.Priority, cmd.Stage)
		return Response{OK: ok, Operator: index, Err: rejected(ok, ErrOperatorRejected)}
	case CommandAddOperatorTyped:
		ok := s.AddOperatorTyped(cmd.OperatorID, cmd.In, cmd.Out, cmd.Priority, cmd.Stage, cmd.InSchema, cmd.OutSchema)
		return Response{OK: ok, Err: rejected(ok, ErrOperatorRejected)}
	case CommandStartGraph:
		report, err := s.StartGraph(ctx, cmd.Steps)
		return Response{OK: err == nil, Report: &report, Err: err}
	case CommandEnableDeterministic:
		s.mu.Lock()
		err := s.enableDeterministic(scheduler.TaskSpec{WCET: cmd.WCET, Period: cmd.Period, Deadline: cmd.Deadline})
		s.mu.Unlock()
		return Response{OK: err == nil, Err: err}
	case CommandDisableDeterministic:
		ok := s.DisableDeterministic()
		return Response{OK: ok, Err: rejected(ok, ErrNoGraph)}
	case CommandResetOverruns:
		ok := s.ResetOverruns()
		return Response{OK: ok, Err: rejected(ok, ErrNoGraph)}
	case CommandStatus:
		status := s.Status()
		return Response{OK: true, GraphID: status.GraphID, Status: &status}
	}
	return Response{Err: ErrUnknownCommand}
}

func rejected(ok bool, err error) error {
	if ok {
		return nil
	}
	return err
}
