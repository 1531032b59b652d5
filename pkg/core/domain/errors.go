package domain

import "errors"

var (
	// ErrNotFound is returned when a profile or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned when caller supplied data fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a unique value (e.g. username) is already taken.
	ErrConflict = errors.New("conflict")
	// ErrStorageUnavailable wraps any transient failure reading or writing durable state.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrConcurrentUpdate is returned by optimistic writers when a record changed underneath them.
	ErrConcurrentUpdate = errors.New("concurrent update conflict")
)
