// Package apperr defines the error taxonomy shared across the application.
package apperr

import "errors"

var (
	// ErrIO marks a failure to open, create, read, or write a catalog file.
	ErrIO = errors.New("i/o failure")
	// ErrStore marks a failed store operation: write failure, missing id,
	// constraint violation.
	ErrStore = errors.New("store operation failed")
	// ErrInconsistentData marks a structural impossibility detected during
	// catalog load. Recoverable: the affected subtree is discarded.
	ErrInconsistentData = errors.New("inconsistent data")
	// ErrNotFound marks an id that does not resolve. Lookups treat this as
	// a soft condition and degrade to an empty result.
	ErrNotFound = errors.New("not found")
)
