package event

import (
	"time"

	"github.com/viant/rtflow/observer"
)

// Record is an audited trace event
type Record struct {
	Seq uint64        `json:"seq"`
	At  time.Duration `json:"at"` // monotonic offset
	observer.Event
}
