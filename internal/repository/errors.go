// Package repository defines the persistence contracts consumed by the
// reservation core together with the sentinel errors shared by every store
// implementation.  Handlers and services use these values to tell a missing
// row apart from an infrastructure failure.
package repository

import "errors"

// ErrNotFound is returned when the requested reservation or table does
// not exist.  Services translate it into a NotFound failure.
var ErrNotFound = errors.New("not found")
