package index

import "errors"

// Sentinel kinds for index errors.
var (
	ErrUnavailable = errors.New("index unavailable")
)
