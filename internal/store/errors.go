package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert would violate a uniqueness
// invariant, e.g. creating a token for a user that already has one.
var ErrConflict = errors.New("conflict")
