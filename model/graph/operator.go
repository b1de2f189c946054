package graph

// OperatorID indexes the graph operator table, i.e. the registration order
type OperatorID int

// OperatorSpec describes an operator to be registered
type OperatorSpec struct {
	ID        uint32
	Name      string
	Priority  int
	In        ChannelID
	Out       ChannelID
	Stage     Stage
	InSchema  *SchemaID
	OutSchema *SchemaID
	Body      Body
}

// NewOperatorSpec returns a spec with both ports unbound
func NewOperatorSpec(id uint32, priority int, stage Stage) OperatorSpec {
	return OperatorSpec{ID: id, Priority: priority, In: NoChannel, Out: NoChannel, Stage: stage}
}

// Operator is a registered computation unit
type Operator struct {
	Index     OperatorID
	ID        uint32
	Name      string
	Priority  int
	In        ChannelID
	Out       ChannelID
	Stage     Stage
	InSchema  *SchemaID
	OutSchema *SchemaID
	Body      Body
}

// HasInput reports whether the operator consumes from a channel
func (o *Operator) HasInput() bool { return o.In.Valid() }

// HasOutput reports whether the operator produces into a channel
func (o *Operator) HasOutput() bool { return o.Out.Valid() }

// Outranks reports whether o is preferred over other: higher priority first,
// then lower registration index.
func (o *Operator) Outranks(other *Operator) bool {
	if other == nil {
		return true
	}
	if o.Priority != other.Priority {
		return o.Priority > other.Priority
	}
	return o.Index < other.Index
}

func newOperator(index OperatorID, spec *OperatorSpec) Operator {
	return Operator{
		Index:     index,
		ID:        spec.ID,
		Name:      spec.Name,
		Priority:  spec.Priority,
		In:        spec.In,
		Out:       spec.Out,
		Stage:     spec.Stage,
		InSchema:  copySchema(spec.InSchema),
		OutSchema: copySchema(spec.OutSchema),
		Body:      spec.Body,
	}
}

func copySchema(s *SchemaID) *SchemaID {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
