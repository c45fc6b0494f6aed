package hub

import "errors"

// Domain errors for the hub package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, hub.ErrNotConnected) {
//	    // command was dropped
//	}
var (
	// ErrNotConnected is returned when a command is sent while the
	// channel is not open. The command is lost by design.
	ErrNotConnected = errors.New("hub: not connected")

	// ErrConnectionFailed is returned when dialling the hub fails.
	// A reconnect attempt has already been scheduled when it is seen.
	ErrConnectionFailed = errors.New("hub: connection failed")

	// ErrClosed is returned when using a client after Close.
	ErrClosed = errors.New("hub: client closed")
)
