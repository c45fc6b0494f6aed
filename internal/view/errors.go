package view

import "errors"

// Domain errors for the view package.
var (
	// ErrUnknownEntity is returned when opening detail for an entity
	// the store has never seen.
	ErrUnknownEntity = errors.New("view: unknown entity")

	// ErrNoDetail is returned when an entity has no detail panel, by
	// capability or by card override.
	ErrNoDetail = errors.New("view: entity has no detail panel")
)
