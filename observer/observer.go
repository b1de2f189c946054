// Package observer defines the observability sink of the execution core. The
// core decides when metrics and trace events fire; sinks decide where they go.
package observer

import (
	"context"
	"time"
)

// Kind is a trace event kind
type Kind int

const (
	OperatorQueued Kind = iota + 1
	OperatorStart
	OperatorEnd
	ChannelDepthChanged
	DeadlineMiss
	Overrun
)

func (k Kind) String() string {
	switch k {
	case OperatorQueued:
		return "operator.queued"
	case OperatorStart:
		return "operator.start"
	case OperatorEnd:
		return "operator.end"
	case ChannelDepthChanged:
		return "channel.depth"
	case DeadlineMiss:
		return "deadline.miss"
	case Overrun:
		return "overrun"
	}
	return "unknown"
}

// Event is a discrete trace event. Fields not relevant to Kind are zero;
// Operator and Channel are -1 when absent.
type Event struct {
	Kind     Kind
	Graph    uint32
	Operator int
	Name     string
	Channel  int
	Depth    int
	Elapsed  time.Duration
	Err      error
}

// Sink receives named numeric metrics and trace events
type Sink interface {
	Metric(name string, value float64)
	Trace(ctx context.Context, event Event)
}

// Nop discards everything
type Nop struct{}

// Metric implements Sink
func (Nop) Metric(string, float64) {}

// Trace implements Sink
func (Nop) Trace(context.Context, Event) {}

type multi []Sink

// Multi fans out to every non-nil sink, in order
func Multi(sinks ...Sink) Sink {
	var ret multi
	for _, s := range sinks {
		if s != nil {
			ret = append(ret, s)
		}
	}
	switch len(ret) {
	case 0:
		return Nop{}
	case 1:
		return ret[0]
	}
	return ret
}

func (m multi) Metric(name string, value float64) {
	for _, s := range m {
		s.Metric(name, value)
	}
}

func (m multi) Trace(ctx context.Context, event Event) {
	for _, s := range m {
		s.Trace(ctx, event)
	}
}
