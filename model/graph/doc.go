// Package graph defines the dataflow topology: bounded channels carrying
// opaque data handles and the operators wired between them.
//
// A Graph owns fixed-capacity channel and operator tables that are sized once
// at construction. Additions beyond capacity fail silently with a counter
// increment, and schema ids bound to channels are first-writer-wins.
package graph
