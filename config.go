package rtflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/rtflow/model/graph"
	"github.com/viant/rtflow/policy"
	"github.com/viant/rtflow/service/event"
	"github.com/viant/rtflow/service/meta"
	"github.com/viant/rtflow/service/processor"
	"github.com/viant/rtflow/service/scheduler"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is a serialisable representation of the engine configuration. It
// can be populated from YAML or JSON; LoadConfig starts from DefaultConfig so
// omitted sections keep their package defaults.
type Config struct {
	Graph     graph.Config     `json:"graph" yaml:"graph"`
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Processor processor.Config `json:"processor" yaml:"processor"`
	Tracing   TracingConfig    `json:"tracing" yaml:"tracing"`
	Logging   LoggingConfig    `json:"logging" yaml:"logging"`
	Audit     event.Config     `json:"audit" yaml:"audit"`
	Policy    *policy.Config   `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// TracingConfig controls the OpenTelemetry sink
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	// OutputFile receives stdout exporter output; empty means os.Stdout
	OutputFile string `json:"outputFile" yaml:"outputFile"`
}

// LoggingConfig controls the zap logger built by NewLogger
type LoggingConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// DefaultConfig returns a Config populated with package defaults
func DefaultConfig() *Config {
	return &Config{
		Graph:     graph.DefaultConfig(),
		Scheduler: scheduler.DefaultConfig(),
		Processor: processor.DefaultConfig(),
		Tracing: TracingConfig{
			ServiceName:    "rtflow",
			ServiceVersion: "dev",
		},
		Logging: LoggingConfig{Level: "info"},
		Audit:   event.DefaultConfig(),
	}
}

// Validate returns aggregated error describing invalid settings or nil
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if err := c.Graph.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Audit.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("audit.capacity must be > 0"))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Policy != nil {
		switch c.Policy.Mode {
		case "", policy.ModeAuto, policy.ModeDeny:
		default:
			errs = append(errs, fmt.Errorf("policy.mode %q is not supported in configuration", c.Policy.Mode))
		}
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		errs = append(errs, fmt.Errorf("tracing.serviceName must be set when tracing is enabled"))
	}
	return errors.Join(errs...)
}

// NewLogger builds a zap logger for the logging section
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	if c.Logging.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// LoadConfig reads YAML configuration from any afs supported URL; ${env.KEY}
// expressions are expanded before decoding.
func LoadConfig(ctx context.Context, URL string, options ...storage.Option) (*Config, error) {
	cfg := DefaultConfig()
	if err := meta.New(afs.New(), "", options...).Load(ctx, URL, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return cfg, nil
}
