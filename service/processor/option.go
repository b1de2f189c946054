package processor

import (
	"github.com/viant/rtflow/internal/allocguard"
	"github.com/viant/rtflow/internal/clock"
	"github.com/viant/rtflow/observer"
	"github.com/viant/rtflow/service/scheduler"
	"go.uber.org/zap"
)

// Config represents processor configuration
type Config struct {
	// EnforceAllocGuard turns an allocation inside a deterministic step into
	// a fatal fault. Disabling it only downgrades the fault to a log entry.
	EnforceAllocGuard bool `json:"enforceAllocGuard" yaml:"enforceAllocGuard"`
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{EnforceAllocGuard: true}
}

// Option customises the processor
type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithScheduler sets the scheduler shared by all graphs
func WithScheduler(sched *scheduler.Service) Option {
	return func(s *Service) {
		s.scheduler = sched
	}
}

// WithSink sets the observability sink
func WithSink(sink observer.Sink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithGuard sets the allocation guard used in deterministic mode
func WithGuard(guard allocguard.Guard) Option {
	return func(s *Service) {
		if guard != nil {
			s.guard = guard
		}
	}
}

// WithClock sets the monotonic clock
func WithClock(clk clock.Clock) Option {
	return func(s *Service) {
		if clk != nil {
			s.clock = clk
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
