package domain

import "errors"

var (
	// ErrUnauthenticated is returned when an operation requires a signed-in
	// identity and the session carries none.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrNotFound is returned when the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidTransition is returned for any status edge the lifecycle
	// state machine does not allow, including any move out of resolved.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidArgument is returned for malformed input: blank
	// descriptions, unknown priorities or status filters, bad fill levels.
	ErrInvalidArgument = errors.New("invalid argument")
)
