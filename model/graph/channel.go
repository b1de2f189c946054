package graph

import (
	"github.com/viant/rtflow/service/messaging/ring"
)

// Handle is an opaque reference to an externally owned buffer. Operators pass
// handles between each other without copying payload bytes.
type Handle uint64

// ChannelID indexes the graph channel table
type ChannelID int

// NoChannel marks an unbound operator port
const NoChannel ChannelID = -1

// Valid reports whether id refers to a channel slot (it may still be out of range)
func (id ChannelID) Valid() bool {
	return id >= 0
}

// Channel is a bounded single-producer/single-consumer queue of handles with
// an optional, monotonically bound schema id.
type Channel struct {
	id     ChannelID
	queue  *ring.Queue[Handle]
	schema SchemaID
	bound  bool
}

// NewChannel creates a channel with fixed capacity
func NewChannel(id ChannelID, capacity int) *Channel {
	return &Channel{
		id:    id,
		queue: ring.NewQueue[Handle](ring.Config{Capacity: capacity}),
	}
}

// ID returns channel index within its graph
func (c *Channel) ID() ChannelID { return c.id }

// TryEnqueue appends h; false signals backpressure and must not be ignored
func (c *Channel) TryEnqueue(h Handle) bool {
	return c.queue.TryEnqueue(h)
}

// TryDequeue removes the oldest handle, false when empty
func (c *Channel) TryDequeue() (Handle, bool) {
	return c.queue.TryDequeue()
}

// Peek returns the oldest handle without removing it
func (c *Channel) Peek() (Handle, bool) {
	return c.queue.Peek()
}

// Depth returns number of queued handles
func (c *Channel) Depth() int { return c.queue.Len() }

// Cap returns fixed capacity
func (c *Channel) Cap() int { return c.queue.Cap() }

// IsEmpty reports Depth() == 0
func (c *Channel) IsEmpty() bool { return c.queue.IsEmpty() }

// IsFull reports Depth() == Cap()
func (c *Channel) IsFull() bool { return c.queue.IsFull() }

// Schema returns bound schema id, if any
func (c *Channel) Schema() (SchemaID, bool) {
	return c.schema, c.bound
}

// accepts reports whether schema is compatible with the current binding
func (c *Channel) accepts(schema SchemaID) bool {
	return !c.bound || c.schema == schema
}

// bind sets the schema on first use, later calls never overwrite it
func (c *Channel) bind(schema SchemaID) {
	if c.bound {
		return
	}
	c.schema = schema
	c.bound = true
}
