package repository

import "errors"

var (
	// ErrNotFound is returned when a requested record doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a record with the same identity is already stored
	ErrAlreadyExists = errors.New("already exists")
)
