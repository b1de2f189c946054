package idgen

import (
	"strconv"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier
func New() string { return NewFunc() }

// Session returns a session tag for the graph with the supplied id
func Session(graphID uint32) string {
	return "graph-" + strconv.FormatUint(uint64(graphID), 10) + "/" + NewFunc()
}
