package devcore

import "errors"

var (
	// ErrNotFound is returned when the requested device resource doesn't exist.
	ErrNotFound = errors.New("device resource not found")

	// ErrUnreachable is returned when the device can't be reached over the network.
	ErrUnreachable = errors.New("device unreachable")

	// ErrAuthFailed is returned when the device rejects the credentials.
	ErrAuthFailed = errors.New("device authentication failed")

	// ErrTimeout is returned when the device doesn't respond in time.
	ErrTimeout = errors.New("device query timeout")
)
