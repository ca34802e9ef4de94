package repositories

import "errors"

var (
	// ErrNotFound is returned when an entity id does not resolve.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a guarded write matched no document,
	// e.g. a duplicate join request or membership.
	ErrConflict = errors.New("conflicting state")
)
