package service

import "errors"

var (
	// ErrNotAuthorized is returned when the acting person is not allowed
	// to perform the operation (e.g. confirming someone else's
	// settlement). Callers map this to their 403 equivalent.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidTransition is returned when a settlement record is
	// already in a terminal state.
	ErrInvalidTransition = errors.New("settlement already resolved")
)
