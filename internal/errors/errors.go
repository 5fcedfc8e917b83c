package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Services return these wrapped with context; the API layer and the Terminal use
// `errors.Is()` to map them to HTTP status codes or user-facing behaviour.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data failed validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation conflicts with the current state
	// of a resource.
	ErrConflict = errors.New("resource conflict")

	// ErrInternal signifies an unexpected error. It keeps implementation
	// details out of client-facing messages.
	ErrInternal = errors.New("internal server error")

	// ErrSessionNotFound is an invariant violation: a caller referenced a
	// session id the Session Store does not own.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBusy is returned when a submission arrives while a stream is in flight.
	// Submissions are rejected, never queued.
	ErrBusy = errors.New("a request is already in flight")

	// ErrUnknownProvider is returned for provider names outside the supported set.
	ErrUnknownProvider = errors.New("invalid provider")

	// ErrUnknownStore is returned for local store names outside the fixed set.
	ErrUnknownStore = errors.New("unknown store")
)
