package controls

import "errors"

// Domain errors for the controls package.
var (
	// ErrReadOnlyControl is returned when Set is called on a control
	// with no action (readouts, images).
	ErrReadOnlyControl = errors.New("controls: control is read-only")

	// ErrInvalidValue is returned when Set receives a value of the
	// wrong type for the control kind.
	ErrInvalidValue = errors.New("controls: invalid value for control")
)
