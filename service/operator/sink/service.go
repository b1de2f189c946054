package sink

import (
	"context"
	"errors"

	"github.com/viant/rtflow/model/graph"
)

// Name is the registry name
const Name = "sink"

// ErrNoInput is returned when the sink is not wired to an input channel
var ErrNoInput = errors.New("sink: input channel not bound")

// Service drains one handle per invocation
type Service struct {
	Consumed int
	Last     graph.Handle
}

// New creates a sink body
func New() *Service {
	return &Service{}
}

// Execute dequeues and records the head of in
func (s *Service) Execute(ctx context.Context, in, out *graph.Channel) error {
	if in == nil {
		return ErrNoInput
	}
	h, ok := in.TryDequeue()
	if !ok {
		return nil
	}
	s.Last = h
	s.Consumed++
	return nil
}
