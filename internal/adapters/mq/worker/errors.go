package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrUnknownBrain = errors.New("unknown brain")
)
