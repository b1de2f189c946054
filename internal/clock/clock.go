package clock

import (
	"sync/atomic"
	"time"
)

// Clock is a monotonic nanosecond counter. Values are offsets from an
// arbitrary anchor and are only meaningful relative to each other.
type Clock interface {
	Nanotime() time.Duration
}

// Monotonic reads the runtime monotonic clock relative to its creation.
type Monotonic struct {
	anchor time.Time
}

// NewMonotonic anchors a monotonic clock at the current instant
func NewMonotonic() *Monotonic {
	return &Monotonic{anchor: time.Now()}
}

// Nanotime returns the time elapsed since the anchor
func (m *Monotonic) Nanotime() time.Duration {
	return time.Since(m.anchor)
}

// Manual is a clock advanced explicitly, for tests and simulation.
type Manual struct {
	now atomic.Int64
}

// NewManual creates a manual clock starting at start
func NewManual(start time.Duration) *Manual {
	m := &Manual{}
	m.now.Store(int64(start))
	return m
}

// Nanotime returns the current manual time
func (m *Manual) Nanotime() time.Duration {
	return time.Duration(m.now.Load())
}

// Advance moves the clock forward by d
func (m *Manual) Advance(d time.Duration) {
	m.now.Add(int64(d))
}

// Set moves the clock to t
func (m *Manual) Set(t time.Duration) {
	m.now.Store(int64(t))
}
