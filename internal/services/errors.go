package services

import "errors"

var (
	// ErrNotFound is returned when a referenced user or event does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when visibility rules deny access. Callers
	// surface it as a bare forbidden result so hidden content existence
	// never leaks past a boolean.
	ErrForbidden = errors.New("forbidden")
)
