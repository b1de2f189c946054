package scheduler

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// MilliScale is the fixed-point scale of utilization values
const MilliScale = 1000

// Config represents scheduler configuration
type Config struct {
	// UtilizationBound is the admission bound in milli-units. It is kept
	// below the theoretical EDF bound of 1000 to absorb interrupt and jitter
	// overhead.
	UtilizationBound int `json:"utilizationBound" yaml:"utilizationBound"`

	// MaxServers is the size of the server table
	MaxServers int `json:"maxServers" yaml:"maxServers"`
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		UtilizationBound: 850,
		MaxServers:       16,
	}
}

// Validate returns an error describing invalid settings or nil
func (c *Config) Validate() error {
	if c.UtilizationBound <= 0 || c.UtilizationBound > MilliScale {
		return fmt.Errorf("scheduler.utilizationBound must be in (0, %d]", MilliScale)
	}
	if c.MaxServers <= 0 {
		return fmt.Errorf("scheduler.maxServers must be > 0")
	}
	return nil
}

// MissListener is notified whenever a server misses its deadline; missed is
// the number of windows that closed unserved since the last notification.
type MissListener func(server Server, missed int, now time.Duration)

// Option customises the scheduler
type Option func(s *Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
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

// WithMissListeners registers deadline miss listeners
func WithMissListeners(fns ...MissListener) Option {
	return func(s *Service) {
		s.missListeners = append(s.missListeners, fns...)
	}
}
