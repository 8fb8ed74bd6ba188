package repository

import "errors"

var (
	// ErrDuplicateActiveAttempt means the (quiz, student) pair already has an
	// in-progress attempt. Raised from the unique-violation path on insert.
	ErrDuplicateActiveAttempt = errors.New("an active attempt already exists for this quiz")
)
