package policy

import (
	"context"
	"strings"
)

// Modes recognised by the control plane
const (
	ModeAsk  = "ask"  // ask before every command
	ModeAuto = "auto" // execute automatically (default)
	ModeDeny = "deny" // block every command
)

// AskFunc is invoked when Mode==ask. Returning true approves the command.
type AskFunc func(ctx context.Context, command string, p *Policy) bool

// Policy filters commands by name. A nil *Policy permits everything.
type Policy struct {
	Mode      string
	AllowList []string // empty => all
	BlockList []string
	Ask       AskFunc
}

// Config represents the declarative, serialisable part of a Policy
type Config struct {
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowList []string `json:"allow,omitempty" yaml:"allow,omitempty"`
	BlockList []string `json:"block,omitempty" yaml:"block,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:      p.Mode,
		AllowList: append([]string(nil), p.AllowList...),
		BlockList: append([]string(nil), p.BlockList...),
	}
}

// FromConfig converts a Config to a runtime Policy (without AskFunc)
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:      c.Mode,
		AllowList: append([]string(nil), c.AllowList...),
		BlockList: append([]string(nil), c.BlockList...),
	}
}

// IsAllowed evaluates BlockList then AllowList, case-insensitively
func (p *Policy) IsAllowed(command string) bool {
	if p == nil {
		return true
	}
	for _, b := range p.BlockList {
		if strings.EqualFold(command, b) {
			return false
		}
	}
	if len(p.AllowList) == 0 {
		return true
	}
	for _, a := range p.AllowList {
		if strings.EqualFold(command, a) {
			return true
		}
	}
	return false
}

// Permit combines the lists with the mode. Ask mode without AskFunc denies.
func (p *Policy) Permit(ctx context.Context, command string) bool {
	if p == nil {
		return true
	}
	if !p.IsAllowed(command) {
		return false
	}
	switch strings.ToLower(p.Mode) {
	case ModeDeny:
		return false
	case ModeAsk:
		return p.Ask != nil && p.Ask(ctx, command, p)
	}
	return true
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds policy in ctx
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy or nil
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
