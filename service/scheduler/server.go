package scheduler

import (
	"math/bits"
	"time"
)

// ServerID identifies an admitted server
type ServerID int

// NoServer is returned when nothing is eligible
const NoServer ServerID = -1

// TaskSpec describes the timing contract of a real-time task
type TaskSpec struct {
	WCET     time.Duration `json:"wcet" yaml:"wcet"`
	Period   time.Duration `json:"period" yaml:"period"`
	Deadline time.Duration `json:"deadline" yaml:"deadline"`
}

// Validate checks the constrained-deadline model: 0 < WCET <= Deadline <= Period
func (t TaskSpec) Validate() error {
	if t.WCET <= 0 || t.Period <= 0 || t.Deadline <= 0 {
		return ErrInvalidSpec
	}
	if t.WCET > t.Deadline || t.Deadline > t.Period {
		return ErrInvalidSpec
	}
	return nil
}

// Utilization returns ceil(WCET*1000/Period), rounded up so that admission
// never under-counts demand.
func (t TaskSpec) Utilization() int {
	if t.Period <= 0 || t.WCET <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(t.WCET), MilliScale)
	period := uint64(t.Period)
	if hi >= period {
		return MilliScale + 1 // > 100%, only reachable for invalid specs
	}
	quo, rem := bits.Div64(hi, lo, period)
	if rem != 0 {
		quo++
	}
	if quo > MilliScale {
		return MilliScale + 1
	}
	return int(quo)
}

// State is the server lifecycle state
type State int

const (
	// StateIdle admitted, outside its window or waiting for evaluation
	StateIdle State = iota
	// StateReady has budget and now lies within its window
	StateReady
	// StateRunning currently selected
	StateRunning
	// StateDepleted budget exhausted or deadline passed, waiting for next period
	StateDepleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateDepleted:
		return "depleted"
	}
	return "unknown"
}

// Server is the bookkeeping of one admitted task
type Server struct {
	ID          ServerID
	TaskID      uint32
	Spec        TaskSpec
	Utilization int
	Budget      time.Duration
	Deadline    time.Duration // absolute
	PeriodStart time.Duration // absolute
	State       State

	Misses      int
	Overruns    int
	Completions int
	Throttles   int

	served bool // selected at least once in the current window
	inUse  bool
}

// eligible reports whether the server can be selected at now
func (s *Server) eligible(now time.Duration) bool {
	return s.Budget > 0 && now >= s.PeriodStart && now < s.Deadline
}

// replenish restores the budget at the latest period boundary <= now and
// returns the number of periods advanced.
func (s *Server) replenish(now time.Duration) int64 {
	if now < s.PeriodStart+s.Spec.Period {
		return 0
	}
	periods := int64((now - s.PeriodStart) / s.Spec.Period)
	s.PeriodStart += time.Duration(periods) * s.Spec.Period
	s.Deadline = s.PeriodStart + s.Spec.Deadline
	s.Budget = s.Spec.WCET
	s.served = false
	s.State = StateIdle
	return periods
}

// earlier reports whether s takes precedence over other under EDF
func (s *Server) earlier(other *Server) bool {
	if other == nil {
		return true
	}
	if s.Deadline != other.Deadline {
		return s.Deadline < other.Deadline
	}
	if s.TaskID != other.TaskID {
		return s.TaskID < other.TaskID
	}
	return s.ID < other.ID
}
