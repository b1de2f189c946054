package relay

import (
	"context"
	"errors"

	"github.com/viant/rtflow/model/graph"
)

// Name is the registry name
const Name = "relay"

// ErrUnbound is returned when either port is missing
var ErrUnbound = errors.New("relay: input and output channels must be bound")

// Service moves one handle from input to output per invocation
type Service struct {
	Forwarded int
}

// New creates a relay body
func New() *Service {
	return &Service{}
}

// Execute forwards the head of in to out. The handle is only dequeued when
// out has room, so backpressure never drops data.
func (s *Service) Execute(ctx context.Context, in, out *graph.Channel) error {
	if in == nil || out == nil {
		return ErrUnbound
	}
	if out.IsFull() {
		return nil
	}
	h, ok := in.TryDequeue()
	if !ok {
		return nil
	}
	out.TryEnqueue(h)
	s.Forwarded++
	return nil
}
