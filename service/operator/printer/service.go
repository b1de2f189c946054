package printer

import (
	"context"

	"github.com/viant/rtflow/model/graph"
	"go.uber.org/zap"
)

// Name is the registry name
const Name = "printer"

// Service logs each handle it forwards. It allocates, so it must not be used
// in deterministic mode.
type Service struct {
	logger *zap.Logger
}

// New creates a printer body
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}
}

// Execute dequeues a handle, logs it and forwards it when an output is bound
func (s *Service) Execute(ctx context.Context, in, out *graph.Channel) error {
	if in == nil {
		return nil
	}
	if out != nil && out.IsFull() {
		return nil
	}
	h, ok := in.TryDequeue()
	if !ok {
		return nil
	}
	s.logger.Info("handle", zap.Uint64("handle", uint64(h)), zap.Int("depth", in.Depth()))
	if out != nil {
		out.TryEnqueue(h)
	}
	return nil
}
