package graph

import "strconv"

// SchemaID is an opaque type tag bound to a channel to prevent mismatched
// producer/consumer wiring.
type SchemaID uint32

// Schema returns a pointer to id, for optional spec fields
func Schema(id SchemaID) *SchemaID {
	return &id
}

func (s SchemaID) String() string {
	return strconv.FormatUint(uint64(s), 10)
}
