package messaging

// Queue represents a bounded, non-blocking FIFO for any payload type.
//
// Implementations never allocate after construction and never block:
// TryEnqueue reports false when the queue is full and TryDequeue reports false
// when it is empty. Callers treat a failed TryEnqueue as backpressure.
type Queue[T any] interface {
	// TryEnqueue appends t at the tail, false when full
	TryEnqueue(t T) bool

	// TryDequeue removes the head, false when empty
	TryDequeue() (T, bool)

	// Peek returns the head without removing it
	Peek() (T, bool)

	// Len returns the current number of queued items
	Len() int

	// Cap returns the fixed capacity
	Cap() int
}
