package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a state transition is not allowed
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")

	// ErrAlreadyStarted is returned when starting a step that is already in review
	ErrAlreadyStarted = errors.New("step already started")

	// ErrAlreadyFinalized is returned for any trigger on a terminal step
	ErrAlreadyFinalized = errors.New("step already finalized")
)
