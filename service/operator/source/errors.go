package source

import "errors"

// ErrNoOutput is returned when the source is not wired to an output channel
var ErrNoOutput = errors.New("source: output channel not bound")
