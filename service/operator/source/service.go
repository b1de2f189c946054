package source

import (
	"context"

	"github.com/viant/rtflow/model/graph"
)

// Name is the registry name
const Name = "source"

// Service emits monotonically increasing handles into its output channel
type Service struct {
	next    graph.Handle
	Emitted int
	Blocked int
}

// New creates a source starting at handle start
func New(start graph.Handle) *Service {
	return &Service{next: start}
}

// Execute enqueues the next handle; a full output keeps the handle for the
// next invocation.
func (s *Service) Execute(ctx context.Context, in, out *graph.Channel) error {
	if out == nil {
		return ErrNoOutput
	}
	if !out.TryEnqueue(s.next) {
		s.Blocked++
		return nil
	}
	s.next++
	s.Emitted++
	return nil
}
