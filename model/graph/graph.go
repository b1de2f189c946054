package graph

import (
	"go.uber.org/zap"
)

// Stats holds wiring and execution counters of a graph
type Stats struct {
	Mismatches        int
	ChannelTableFull  int
	OperatorTableFull int
	OutOfRange        int
	Overruns          int
	BodyErrors        int
}

// Graph owns fixed-capacity channel and operator tables
type Graph struct {
	id        uint32
	session   string
	config    Config
	channels  []*Channel
	operators []Operator
	stats     Stats
	logger    *zap.Logger
}

// New creates a graph; tables are allocated once with configured capacities
func New(id uint32, opts ...Option) *Graph {
	g := &Graph{
		id:     id,
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	defaults := DefaultConfig()
	if g.config.MaxChannels <= 0 {
		g.config.MaxChannels = defaults.MaxChannels
	}
	if g.config.MaxOperators <= 0 {
		g.config.MaxOperators = defaults.MaxOperators
	}
	if g.config.DefaultCapacity <= 0 {
		g.config.DefaultCapacity = defaults.DefaultCapacity
	}
	g.channels = make([]*Channel, 0, g.config.MaxChannels)
	g.operators = make([]Operator, 0, g.config.MaxOperators)
	g.logger = g.logger.With(zap.Uint32("graph", id), zap.String("session", g.session))
	return g
}

// ID returns graph id, used as the scheduler task id
func (g *Graph) ID() uint32 { return g.id }

// Session returns the session tag
func (g *Graph) Session() string { return g.session }

// Config returns effective table sizing
func (g *Graph) Config() Config { return g.config }

// AddChannel appends a channel with fixed capacity (default when <= 0).
// When the channel table is full the call fails silently: it is logged and
// counted, and (NoChannel, false) is returned.
func (g *Graph) AddChannel(capacity int) (ChannelID, bool) {
	if len(g.channels) == cap(g.channels) {
		g.stats.ChannelTableFull++
		g.logger.Warn("channel table full", zap.Int("capacity", cap(g.channels)))
		return NoChannel, false
	}
	if capacity <= 0 {
		capacity = g.config.DefaultCapacity
	}
	id := ChannelID(len(g.channels))
	g.channels = append(g.channels, NewChannel(id, capacity))
	return id, true
}

// AddOperator registers an operator without schema checks. Port indices must
// still refer to existing channels and the operator table must have room.
func (g *Graph) AddOperator(spec OperatorSpec) (OperatorID, bool) {
	if !g.hasOperatorRoom() || !g.portsInRange(&spec) {
		return -1, false
	}
	return g.insert(&spec), true
}

// AddOperatorStrict registers an operator enforcing schema rules. Declared
// schemas are checked against both channel bindings before anything is
// mutated; on conflict the operator is rejected, the graph is left unchanged
// and the mismatch counter is incremented.
func (g *Graph) AddOperatorStrict(spec OperatorSpec) bool {
	if !g.hasOperatorRoom() || !g.portsInRange(&spec) {
		return false
	}
	if !g.schemasCompatible(&spec) {
		g.stats.Mismatches++
		g.logger.Warn("schema mismatch, operator rejected",
			zap.Uint32("operator", spec.ID),
			zap.Int("in", int(spec.In)),
			zap.Int("out", int(spec.Out)))
		return false
	}
	if spec.OutSchema != nil && spec.Out.Valid() {
		g.channels[spec.Out].bind(*spec.OutSchema)
	}
	if spec.InSchema != nil && spec.In.Valid() {
		g.channels[spec.In].bind(*spec.InSchema)
	}
	g.insert(&spec)
	return true
}

func (g *Graph) schemasCompatible(spec *OperatorSpec) bool {
	if spec.OutSchema != nil && spec.Out.Valid() && !g.channels[spec.Out].accepts(*spec.OutSchema) {
		return false
	}
	if spec.InSchema != nil && spec.In.Valid() && !g.channels[spec.In].accepts(*spec.InSchema) {
		return false
	}
	// a self-loop must not bind the same unbound channel to two schemas
	if spec.InSchema != nil && spec.OutSchema != nil && spec.In.Valid() && spec.In == spec.Out {
		return *spec.InSchema == *spec.OutSchema
	}
	return true
}

func (g *Graph) hasOperatorRoom() bool {
	if len(g.operators) == cap(g.operators) {
		g.stats.OperatorTableFull++
		g.logger.Warn("operator table full", zap.Int("capacity", cap(g.operators)))
		return false
	}
	return true
}

func (g *Graph) portsInRange(spec *OperatorSpec) bool {
	if g.inRange(spec.In) && g.inRange(spec.Out) {
		return true
	}
	g.stats.OutOfRange++
	g.logger.Warn("channel index out of range",
		zap.Uint32("operator", spec.ID),
		zap.Int("in", int(spec.In)),
		zap.Int("out", int(spec.Out)),
		zap.Int("channels", len(g.channels)))
	return false
}

func (g *Graph) inRange(id ChannelID) bool {
	return id == NoChannel || (id >= 0 && int(id) < len(g.channels))
}

func (g *Graph) insert(spec *OperatorSpec) OperatorID {
	index := OperatorID(len(g.operators))
	g.operators = append(g.operators, newOperator(index, spec))
	return index
}

// IsRunnable is the sole readiness predicate: the input (if any) is non-empty
// and the output (if any) is non-full.
func (g *Graph) IsRunnable(op *Operator) bool {
	if op.In.Valid() && g.channels[op.In].IsEmpty() {
		return false
	}
	if op.Out.Valid() && g.channels[op.Out].IsFull() {
		return false
	}
	return true
}

// Counts returns (#operators, #channels)
func (g *Graph) Counts() (int, int) {
	return len(g.operators), len(g.channels)
}

// Channel returns channel by id or nil
func (g *Graph) Channel(id ChannelID) *Channel {
	if id < 0 || int(id) >= len(g.channels) {
		return nil
	}
	return g.channels[id]
}

// Operator returns operator by index or nil
func (g *Graph) Operator(index OperatorID) *Operator {
	if index < 0 || int(index) >= len(g.operators) {
		return nil
	}
	return &g.operators[index]
}

// Stats returns a copy of counters
func (g *Graph) Stats() Stats {
	return g.stats
}

// RecordOverrun increments the overrun counter
func (g *Graph) RecordOverrun() {
	g.stats.Overruns++
}

// RecordBodyError increments the body error counter
func (g *Graph) RecordBodyError() {
	g.stats.BodyErrors++
}

// ResetOverruns clears the overrun counter; nothing else resets it
func (g *Graph) ResetOverruns() {
	g.stats.Overruns = 0
}
