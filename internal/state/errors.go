package state

import "errors"

var (
	// ErrInvalidTransition indicates a transition the build lifecycle does not allow
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrTerminal indicates the machine already reached Done or Failed
	ErrTerminal = errors.New("state machine is in a terminal state")
)
