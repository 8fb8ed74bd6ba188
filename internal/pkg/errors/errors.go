package errors

import "errors"

// Common application errors shared across services and handlers.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for authentication failures (bad token, bad credentials).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller lacks permission for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for invalid input data.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for state conflicts (duplicate submission,
	// deleting a quiz that already has attempts, and the like).
	ErrConflict = errors.New("resource state conflict")
)
