package processor

import "time"

// StopReason tells why RunSteps returned
type StopReason int

const (
	// StopCompleted all requested steps ran
	StopCompleted StopReason = iota
	// StopStarved no operator was runnable
	StopStarved
	// StopNotEligible deterministic mode is on and the graph server is not eligible
	StopNotEligible
	// StopCancelled the context was done before the next step
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopCompleted:
		return "completed"
	case StopStarved:
		return "starved"
	case StopNotEligible:
		return "notEligible"
	case StopCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Report summarises one RunSteps call. Early stops are not errors.
type Report struct {
	Requested  int
	Steps      int
	Stop       StopReason
	Overruns   int
	BodyErrors int
	Duration   time.Duration
}
