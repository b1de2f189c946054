// Package event keeps a bounded audit log of trace events. The log is a fixed
// ring: when it is full the oldest record is evicted, so recording never
// blocks and never grows the heap after construction.
package event

import (
	"context"

	"github.com/viant/rtflow/internal/clock"
	"github.com/viant/rtflow/observer"
	"github.com/viant/rtflow/service/messaging/ring"
)

// Config for the audit recorder
type Config struct {
	Capacity int `json:"capacity" yaml:"capacity"`
}

// DefaultConfig returns default recorder configuration
func DefaultConfig() Config {
	return Config{Capacity: 256}
}

// Recorder is an observer.Sink keeping the latest trace events
type Recorder struct {
	queue   *ring.Queue[Record]
	clock   clock.Clock
	seq     uint64
	evicted uint64
}

// NewRecorder creates an audit recorder
func NewRecorder(config Config, clk clock.Clock) *Recorder {
	if config.Capacity <= 0 {
		config = DefaultConfig()
	}
	if clk == nil {
		clk = clock.NewMonotonic()
	}
	return &Recorder{
		queue: ring.NewQueue[Record](ring.Config{Capacity: config.Capacity}),
		clock: clk,
	}
}

// Metric implements observer.Sink; metrics are not audited
func (r *Recorder) Metric(string, float64) {}

// Trace appends the event, evicting the oldest record when full
func (r *Recorder) Trace(_ context.Context, e observer.Event) {
	r.seq++
	record := Record{Seq: r.seq, At: r.clock.Nanotime(), Event: e}
	if r.queue.TryEnqueue(record) {
		return
	}
	r.queue.TryDequeue()
	r.evicted++
	r.queue.TryEnqueue(record)
}

// Drain passes every buffered record, oldest first, to fn and empties the log
func (r *Recorder) Drain(fn func(Record)) int {
	count := 0
	for {
		record, ok := r.queue.TryDequeue()
		if !ok {
			return count
		}
		count++
		if fn != nil {
			fn(record)
		}
	}
}

// Len returns the number of buffered records
func (r *Recorder) Len() int { return r.queue.Len() }

// Evicted returns the number of records dropped to make room
func (r *Recorder) Evicted() uint64 { return r.evicted }

var _ observer.Sink = (*Recorder)(nil)
