package flex

import "errors"

var (
	// ErrInvalidParameter wraps construction-time validation failures.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrActivationKind is returned when a cost model or asset receives an
	// activation record of the wrong kind.
	ErrActivationKind = errors.New("activation kind mismatch")
	// ErrMissingField is returned when an activation lacks a required field.
	ErrMissingField = errors.New("activation missing required field")
	// ErrInvalidActivation is returned for activation fields out of range.
	ErrInvalidActivation = errors.New("invalid activation")
	// ErrInvalidStep is returned for a negative or non-finite step duration.
	ErrInvalidStep = errors.New("invalid step duration")
)
