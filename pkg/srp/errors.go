package srp

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is returned when group or hash parameters are
	// malformed or unsupported.
	ErrInvalidParameter = errors.New("invalid SRP parameter")

	// ErrInvalidState is returned when a state machine operation is called
	// outside the state it requires. It indicates a programming error in the
	// caller, not a protocol failure.
	ErrInvalidState = errors.New("invalid SRP state")
)

// StateError describes a state machine call made in the wrong state.
type StateError struct {
	Op       string
	Expected []State
	Actual   State
}

// Error implements the error interface.
func (e *StateError) Error() string {
	return fmt.Sprintf("%s: invalid state: expected %s, got %s", e.Op, stateList(e.Expected), e.Actual)
}

// Unwrap allows errors.Is(err, ErrInvalidState).
func (e *StateError) Unwrap() error {
	return ErrInvalidState
}

func stateError(op string, actual State, expected ...State) error {
	return &StateError{Op: op, Expected: expected, Actual: actual}
}

func stateList(states []State) string {
	switch len(states) {
	case 0:
		return "none"
	case 1:
		return states[0].String()
	}
	s := states[0].String()
	for _, st := range states[1:] {
		s += "|" + st.String()
	}
	return s
}
