package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted from the current state
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not part of the lifecycle
	ErrInvalidState = errors.New("invalid state")

	// ErrGuardFailed is returned when every guarded transition for a trigger fails
	ErrGuardFailed = errors.New("guard condition failed")
)
