package dashboard

import "errors"

// Domain errors for the dashboard package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, dashboard.ErrNotFound) {
//	    // no stored document; default layout in use
//	}
var (
	// ErrNotFound is returned by loaders when no document is stored yet.
	ErrNotFound = errors.New("dashboard: document not found")

	// ErrInvalidDocument is returned when a document violates a
	// structural invariant (duplicate view ids, oversized card).
	ErrInvalidDocument = errors.New("dashboard: invalid document")

	// ErrViewNotFound is returned by edit operations addressing a view
	// that does not exist.
	ErrViewNotFound = errors.New("dashboard: view not found")

	// ErrRoomNotFound is returned by edit operations addressing a room
	// that does not exist.
	ErrRoomNotFound = errors.New("dashboard: room not found")

	// ErrCardNotFound is returned by edit operations addressing a card
	// index that does not exist.
	ErrCardNotFound = errors.New("dashboard: card not found")

	// ErrNotReady is returned by edit operations before the first load
	// has completed.
	ErrNotReady = errors.New("dashboard: document not loaded")
)
