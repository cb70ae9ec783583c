package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrNotFound     = errors.New("user history not found")
	ErrInvalidLimit = errors.New("invalid history limit")
	ErrMissingUser  = errors.New("response has no user id")
)
