// Package policy provides optional declarative rules applied to control plane
// commands, for example to deny graph mutation once a deployment is sealed or
// to ask an operator before deterministic mode changes.
package policy
