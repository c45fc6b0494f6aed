package telemetry

import "errors"

// Sentinel errors for telemetry operations, checkable with errors.Is.
var (
	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("telemetry: connection failed")

	// ErrDisabled indicates telemetry is disabled in config.
	ErrDisabled = errors.New("telemetry: disabled in configuration")

	// ErrInvalidSnapshot indicates a snapshot without an entity id.
	ErrInvalidSnapshot = errors.New("telemetry: invalid snapshot")
)
