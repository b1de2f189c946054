package rtflow

import "errors"

var (
	// ErrNoGraph is returned by graph operations issued before CreateGraph
	ErrNoGraph = errors.New("rtflow: graph not created")

	// ErrGraphExists is returned when CreateGraph is called twice in a session
	ErrGraphExists = errors.New("rtflow: graph already created")

	// ErrUnknownCommand is returned by Handle for an unsupported command kind
	ErrUnknownCommand = errors.New("rtflow: unknown command")

	// ErrCommandDenied is returned by Handle when the policy refuses a command
	ErrCommandDenied = errors.New("rtflow: command denied")

	// ErrOperatorRejected reports an operator refused by the graph, see
	// graph.Stats for the counter that was incremented
	ErrOperatorRejected = errors.New("rtflow: operator rejected")

	// ErrChannelRejected reports a channel refused by the graph
	ErrChannelRejected = errors.New("rtflow: channel rejected")
)
