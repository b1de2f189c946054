// Package operator groups the built-in operator bodies. Each sub-package
// implements graph.Body; nop, source, relay and sink never allocate and are
// safe in deterministic mode, printer logs and is meant for debugging only.
package operator
