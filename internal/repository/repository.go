// Package repository provides MongoDB access for the scheduling system.
//
// Three collections back the service: `directions` (the routing cache),
// `programs` (fleets and their vehicles) and `tasks` (the async queue).
// Index creation lives in pkg/db.
package repository

import "errors"

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("repository: not found")

	// ErrDuplicateName is returned when a program name collides with an
	// existing one (unique index on programs.name).
	ErrDuplicateName = errors.New("repository: program name already exists")
)
