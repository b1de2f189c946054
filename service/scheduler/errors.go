package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec is returned when a TaskSpec has non-positive or
	// inconsistent timing parameters.
	ErrInvalidSpec = errors.New("scheduler: invalid task spec")

	// ErrUtilizationExceeded is returned when admitting a task would push the
	// admitted utilization over the configured bound.
	ErrUtilizationExceeded = errors.New("scheduler: utilization bound exceeded")

	// ErrServerTableFull is returned when no server slot is left.
	ErrServerTableFull = errors.New("scheduler: server table full")

	// ErrUnknownServer is returned for operations on a server id that was
	// never admitted or has been released.
	ErrUnknownServer = errors.New("scheduler: unknown server")
)

// RejectError describes a refused admission. The caller may retry with a
// smaller WCET or a longer period.
type RejectError struct {
	Reason    error
	TaskID    uint32
	Requested int // milli-units
	Admitted  int // milli-units already committed
	Bound     int // milli-units
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("admission of task %d rejected: requested %d‰, admitted %d‰, bound %d‰: %v",
		e.TaskID, e.Requested, e.Admitted, e.Bound, e.Reason)
}

// Unwrap exposes the rejection reason to errors.Is
func (e *RejectError) Unwrap() error {
	return e.Reason
}
