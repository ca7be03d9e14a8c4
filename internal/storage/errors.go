package storage

import "errors"

var (
	// ErrInvalidInput is returned when a record fails basic validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateKey is returned when a backend with uniqueness guarantees
	// sees a second append for the same candidate within one run.
	ErrDuplicateKey = errors.New("duplicate key: record already appended this run")
)
