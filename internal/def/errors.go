// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

package def

import "errors"

// Sentinel errors. Returned errors wrap these, so callers match with
// errors.Is.
var (
	// ErrNotFound is returned when no record has the requested name.
	ErrNotFound = errors.New("definition not found")

	// ErrWrongType is returned when the named record is not of the
	// requested type.
	ErrWrongType = errors.New("definition has a different type")

	// ErrNotReady is returned by lookups made before ResolveAll completed.
	ErrNotReady = errors.New("definitions are not resolved yet")

	// ErrFrozen is returned when loading into a database that has already
	// been resolved.
	ErrFrozen = errors.New("definition database is frozen")

	// ErrAlreadyResolved is returned by a second ResolveAll.
	ErrAlreadyResolved = errors.New("definitions already resolved")

	// ErrEmptyRef is returned when a required reference has no name.
	ErrEmptyRef = errors.New("required reference is empty")
)
