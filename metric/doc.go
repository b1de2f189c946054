// Package metric keeps named numeric values and trace event counts reported
// by the execution core. A Registry is an observer.Sink; hosts read it through
// Snapshot or subscribe with OnChange.
package metric
