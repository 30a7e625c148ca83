package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("entity already exists")

	// ErrReferenced is returned when deleting an entity other rows still reference.
	ErrReferenced = errors.New("entity is still referenced")
)
