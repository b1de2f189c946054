package metric

import (
	"context"
	"sync"

	"github.com/viant/rtflow/observer"
)

// Snapshot is a read-only copy of a Registry
type Snapshot struct {
	Values map[string]float64
	Events map[observer.Kind]int
}

// Value returns the named value, zero when absent
func (s Snapshot) Value(name string) float64 {
	return s.Values[name]
}

// Registry keeps the latest value of every metric and a count per event kind.
// It is safe for concurrent use so that hosts can read it while a run is in
// progress.
type Registry struct {
	mux      sync.Mutex
	values   map[string]float64
	events   map[observer.Kind]int
	onChange func(name string, value float64)
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		values: map[string]float64{},
		events: map[observer.Kind]int{},
	}
}

// Metric records the latest value of name. The onChange callback, if any,
// runs outside the critical section.
func (r *Registry) Metric(name string, value float64) {
	r.mux.Lock()
	r.values[name] = value
	cb := r.onChange
	r.mux.Unlock()

	if cb != nil {
		cb(name, value)
	}
}

// Add increments name by delta
func (r *Registry) Add(name string, delta float64) {
	r.mux.Lock()
	value := r.values[name] + delta
	r.values[name] = value
	cb := r.onChange
	r.mux.Unlock()

	if cb != nil {
		cb(name, value)
	}
}

// Trace counts the event by kind
func (r *Registry) Trace(_ context.Context, event observer.Event) {
	r.mux.Lock()
	r.events[event.Kind]++
	r.mux.Unlock()
}

// Snapshot returns a copy suitable for read-only inspection.
func (r *Registry) Snapshot() Snapshot {
	r.mux.Lock()
	defer r.mux.Unlock()
	ret := Snapshot{
		Values: make(map[string]float64, len(r.values)),
		Events: make(map[observer.Kind]int, len(r.events)),
	}
	for k, v := range r.values {
		ret.Values[k] = v
	}
	for k, v := range r.events {
		ret.Events[k] = v
	}
	return ret
}

// OnChange registers a callback invoked after every value update. Passing nil
// disables the callback; only one callback can be active.
func (r *Registry) OnChange(cb func(name string, value float64)) {
	r.mux.Lock()
	r.onChange = cb
	r.mux.Unlock()
}

// Reset drops all values and counts
func (r *Registry) Reset() {
	r.mux.Lock()
	r.values = map[string]float64{}
	r.events = map[observer.Kind]int{}
	r.mux.Unlock()
}

var _ observer.Sink = (*Registry)(nil)
