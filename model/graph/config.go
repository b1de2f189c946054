package graph

import (
	"fmt"

	"go.uber.org/zap"
)

// Config controls table capacities
type Config struct {
	MaxChannels     int `json:"maxChannels" yaml:"maxChannels"`
	MaxOperators    int `json:"maxOperators" yaml:"maxOperators"`
	DefaultCapacity int `json:"defaultCapacity" yaml:"defaultCapacity"`
}

// DefaultConfig returns the default table sizing
func DefaultConfig() Config {
	return Config{
		MaxChannels:     32,
		MaxOperators:    64,
		DefaultCapacity: 64,
	}
}

// Validate returns an error describing invalid settings or nil
func (c *Config) Validate() error {
	if c.MaxChannels <= 0 {
		return fmt.Errorf("graph.maxChannels must be > 0")
	}
	if c.MaxOperators <= 0 {
		return fmt.Errorf("graph.maxOperators must be > 0")
	}
	if c.DefaultCapacity <= 0 {
		return fmt.Errorf("graph.defaultCapacity must be > 0")
	}
	return nil
}

// Option customises a Graph
type Option func(g *Graph)

// WithConfig sets table capacities
func WithConfig(config Config) Option {
	return func(g *Graph) {
		g.config = config
	}
}

// WithLogger sets the logger used for wiring diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(g *Graph) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithSession sets the session tag attached to diagnostics
func WithSession(session string) Option {
	return func(g *Graph) {
		g.session = session
	}
}
