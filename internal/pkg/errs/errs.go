package errs

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStaleWrite signals an optimistic version conflict on an idea.
	ErrStaleWrite = errors.New("stale write")
	// ErrIllegalTransition signals a status change the lifecycle does not allow.
	ErrIllegalTransition = errors.New("illegal status transition")
)
