// Package extension provides the run-time registry of operator work bodies.
// Graph definitions and control-plane commands refer to bodies by name; the
// registry turns that name into a fresh graph.Body instance.
//
// The registry is normally populated through the public APIs under the root
// rtflow package, therefore most applications do not need to import this
// package directly.
package extension
