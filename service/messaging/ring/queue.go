package ring

import (
	"github.com/viant/rtflow/service/messaging"
)

// Config for ring queue implementation
type Config struct {
	Capacity int
}

// DefaultConfig returns a standard configuration for ring queue
func DefaultConfig() Config {
	return Config{
		Capacity: 64,
	}
}

// Queue implements a fixed-capacity single-producer/single-consumer ring.
// Storage is allocated once by NewQueue; all other methods are allocation free.
// The single producer/single consumer discipline is a caller contract.
type Queue[T any] struct {
	slots []T
	head  int // next slot to dequeue
	size  int
}

// NewQueue creates a new ring queue
func NewQueue[T any](config Config) *Queue[T] {
	if config.Capacity <= 0 {
		config.Capacity = DefaultConfig().Capacity
	}
	return &Queue[T]{slots: make([]T, config.Capacity)}
}

// TryEnqueue appends t, returns false when the ring is full
func (q *Queue[T]) TryEnqueue(t T) bool {
	if q.size == len(q.slots) {
		return false
	}
	tail := q.head + q.size
	if tail >= len(q.slots) {
		tail -= len(q.slots)
	}
	q.slots[tail] = t
	q.size++
	return true
}

// TryDequeue removes the oldest item, returns false when the ring is empty
func (q *Queue[T]) TryDequeue() (T, bool) {
	var zero T
	if q.size == 0 {
		return zero, false
	}
	t := q.slots[q.head]
	q.slots[q.head] = zero
	q.head++
	if q.head == len(q.slots) {
		q.head = 0
	}
	q.size--
	return t, true
}

// Peek returns the oldest item without removing it
func (q *Queue[T]) Peek() (T, bool) {
	if q.size == 0 {
		var zero T
		return zero, false
	}
	return q.slots[q.head], true
}

// Len returns the current number of items in the ring
func (q *Queue[T]) Len() int {
	return q.size
}

// Cap returns the fixed capacity
func (q *Queue[T]) Cap() int {
	return len(q.slots)
}

// IsEmpty reports whether Len() == 0
func (q *Queue[T]) IsEmpty() bool {
	return q.size == 0
}

// IsFull reports whether Len() == Cap()
func (q *Queue[T]) IsFull() bool {
	return q.size == len(q.slots)
}

// Reset drops all queued items
func (q *Queue[T]) Reset() {
	var zero T
	for q.size > 0 {
		q.slots[q.head] = zero
		q.head++
		if q.head == len(q.slots) {
			q.head = 0
		}
		q.size--
	}
	q.head = 0
}

// ensure Queue implements messaging.Queue interface
var _ messaging.Queue[any] = (*Queue[any])(nil)
