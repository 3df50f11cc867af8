package monstore

import "errors"

var (
	// ErrAlreadyActive is returned when an active session already exists for the key.
	ErrAlreadyActive = errors.New("monitoring session already active")

	// ErrNotActive is returned when there is no active session for the key.
	ErrNotActive = errors.New("monitoring session not active")
)
