package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("service not started")
	ErrEmptyQuery = errors.New("query is empty")
	ErrNoOutputs  = errors.New("no brain produced an output")
)
