// Package allocguard detects heap allocations inside a bracketed region.
//
// A deterministic step must not allocate: the runtime heap counters are
// sampled before and after the operator body and any difference is a fault.
// The guard is process-wide, so the caller must not run other allocating
// goroutines while a region is open.
package allocguard

import (
	"fmt"
	"runtime"
)

// Guard brackets a region that must not allocate
type Guard interface {
	// Begin opens the region
	Begin()
	// End closes the region and returns the number of heap objects allocated
	End() uint64
}

// Fault is the panic value raised when an allocation is detected
type Fault struct {
	Region string
	Allocs uint64
}

func (f *Fault) Error() string {
	return fmt.Sprintf("allocguard: %d heap allocation(s) in %s", f.Allocs, f.Region)
}

// MemStats samples runtime.MemStats.Mallocs. Both samples reuse the same
// preallocated structs so the guard itself does not allocate.
// ReadMemStats flushes the per-P allocation caches; runtime/metrics does not
// and only observes small allocations once a cache span is refilled.
type MemStats struct {
	before runtime.MemStats
	after  runtime.MemStats
}

// New creates a runtime-backed guard
func New() *MemStats {
	return &MemStats{}
}

// Begin samples the allocation counter
func (g *MemStats) Begin() {
	runtime.ReadMemStats(&g.before)
}

// End samples the counter again and returns the delta
func (g *MemStats) End() uint64 {
	runtime.ReadMemStats(&g.after)
	return g.after.Mallocs - g.before.Mallocs
}

// Nop never reports allocations
type Nop struct{}

// Begin implements Guard
func (Nop) Begin() {}

// End implements Guard
func (Nop) End() uint64 { return 0 }

// Enforce panics with a *Fault when allocs is non-zero. A detected allocation
// is a correctness violation and is never recovered by this module.
func Enforce(region string, allocs uint64) {
	if allocs == 0 {
		return
	}
	panic(&Fault{Region: region, Allocs: allocs})
}
