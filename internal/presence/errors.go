package presence

import "errors"

// Sentinel errors for presence operations.
var (
	// ErrNotConnected indicates the announcer is not connected to the broker.
	ErrNotConnected = errors.New("presence: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("presence: connection failed")

	// ErrDisabled indicates presence announcements are disabled in config.
	ErrDisabled = errors.New("presence: disabled in configuration")
)
