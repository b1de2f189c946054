package definition

import (
	"errors"
	"fmt"
	"time"

	"github.com/viant/rtflow/model/graph"
)

// Source describes where a definition was loaded from
type Source struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Definition is a declarative graph setup
type Definition struct {
	Source        *Source        `json:"source,omitempty" yaml:"source,omitempty"`
	Name          string         `json:"name" yaml:"name"`
	Channels      []*Channel     `json:"channels,omitempty" yaml:"channels,omitempty"`
	Operators     []*Operator    `json:"operators,omitempty" yaml:"operators,omitempty"`
	Deterministic *Deterministic `json:"deterministic,omitempty" yaml:"deterministic,omitempty"`
	Steps         int            `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// Channel declares a named channel; zero capacity uses the graph default
type Channel struct {
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity,omitempty" yaml:"capacity,omitempty"`
}

// Operator declares an operator bound to named channels
type Operator struct {
	Name      string          `json:"name" yaml:"name"`
	ID        uint32          `json:"id" yaml:"id"`
	Body      string          `json:"body,omitempty" yaml:"body,omitempty"`
	Priority  int             `json:"priority" yaml:"priority"`
	Stage     graph.Stage     `json:"stage" yaml:"stage"`
	In        string          `json:"in,omitempty" yaml:"in,omitempty"`
	Out       string          `json:"out,omitempty" yaml:"out,omitempty"`
	InSchema  *graph.SchemaID `json:"inSchema,omitempty" yaml:"inSchema,omitempty"`
	OutSchema *graph.SchemaID `json:"outSchema,omitempty" yaml:"outSchema,omitempty"`
	Strict    bool            `json:"strict,omitempty" yaml:"strict,omitempty"`
}

// Typed reports whether the operator must go through schema enforcement
func (o *Operator) Typed() bool {
	return o.Strict || o.InSchema != nil || o.OutSchema != nil
}

// Deterministic holds the real-time reservation of the graph
type Deterministic struct {
	WCET     time.Duration `json:"wcet" yaml:"wcet"`
	Period   time.Duration `json:"period" yaml:"period"`
	Deadline time.Duration `json:"deadline" yaml:"deadline"`
}

// ChannelIndex returns the position of the named channel or -1
func (d *Definition) ChannelIndex(name string) int {
	for i, ch := range d.Channels {
		if ch.Name == name {
			return i
		}
	}
	return -1
}

// Validate checks names and channel references
func (d *Definition) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, fmt.Errorf("definition name was empty"))
	}
	channels := map[string]bool{}
	for i, ch := range d.Channels {
		if ch.Name == "" {
			errs = append(errs, fmt.Errorf("channel[%d]: name was empty", i))
			continue
		}
		if channels[ch.Name] {
			errs = append(errs, fmt.Errorf("channel %v: duplicate name", ch.Name))
		}
		channels[ch.Name] = true
		if ch.Capacity < 0 {
			errs = append(errs, fmt.Errorf("channel %v: negative capacity %d", ch.Name, ch.Capacity))
		}
	}
	operators := map[string]bool{}
	for i, op := range d.Operators {
		if op.Name == "" {
			errs = append(errs, fmt.Errorf("operator[%d]: name was empty", i))
			continue
		}
		if operators[op.Name] {
			errs = append(errs, fmt.Errorf("operator %v: duplicate name", op.Name))
		}
		operators[op.Name] = true
		if op.In != "" && !channels[op.In] {
			errs = append(errs, fmt.Errorf("operator %v: unknown input channel %v", op.Name, op.In))
		}
		if op.Out != "" && !channels[op.Out] {
			errs = append(errs, fmt.Errorf("operator %v: unknown output channel %v", op.Name, op.Out))
		}
	}
	if d.Steps < 0 {
		errs = append(errs, fmt.Errorf("steps must be >= 0"))
	}
	return errors.Join(errs...)
}
