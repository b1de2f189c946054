// Package idgen produces session identifiers for graphs. Callers treat the
// returned values as opaque strings; tests may stub NewFunc.
package idgen
