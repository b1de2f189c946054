package graph

import "context"

// Body is the externally supplied work of an operator. Execute is invoked with
// the operator's bound channels; in or out is nil when the port is unbound.
//
// In deterministic mode Execute must not allocate on the heap and should stay
// within the admitted WCET.
type Body interface {
	Execute(ctx context.Context, in, out *Channel) error
}

// BodyFunc adapts a function to Body
type BodyFunc func(ctx context.Context, in, out *Channel) error

// Execute calls f(ctx, in, out)
func (f BodyFunc) Execute(ctx context.Context, in, out *Channel) error {
	return f(ctx, in, out)
}
