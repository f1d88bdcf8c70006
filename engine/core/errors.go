package core

import (
	"errors"
)

var (
	// ErrResourceStateViolation is raised by the validating device when a
	// buffer or texture is accessed in a usage state that does not allow
	// the access. This is always a programming error in the caller.
	ErrResourceStateViolation = errors.New("resource state violation")
	// ErrInvalidCommandState is raised when command-list recording calls
	// arrive outside an open/close bracket.
	ErrInvalidCommandState = errors.New("command list is not in a recordable state")
	// ErrPermanentState is raised when a transition is requested on a
	// resource whose state has been frozen with a permanent-state call.
	ErrPermanentState = errors.New("resource state is permanent")
	// ErrInitializationFailed wraps shader, texture and layout creation
	// failures during startup. Never retried.
	ErrInitializationFailed = errors.New("initialization failed")
	ErrUnknown              = errors.New("unknown")
)
