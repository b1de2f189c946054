package nop

import (
	"context"

	"github.com/viant/rtflow/model/graph"
)

// Name is the registry name
const Name = "nop"

// Service performs no operation and returns immediately
type Service struct{}

// New creates a nop body
func New() *Service {
	return &Service{}
}

// Execute does nothing
func (s *Service) Execute(ctx context.Context, in, out *graph.Channel) error {
	return nil
}
