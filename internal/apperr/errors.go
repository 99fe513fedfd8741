// Package apperr defines the error taxonomy shared by all services.
// Handlers map these onto HTTP statuses; services wrap them with context
// using fmt.Errorf("...: %w", err).
package apperr

import "errors"

var (
	// ErrValidation indicates bad input, detected before any store write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrNoCapacity indicates every matching QR code is at its daily cap.
	ErrNoCapacity = errors.New("no payment code capacity")

	// ErrUnauthorized indicates a missing or invalid admin/user session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a terminal-state re-transition was attempted.
	ErrConflict = errors.New("already in a terminal state")

	// ErrStore indicates the underlying store call failed or timed out.
	// Request-scoped and retryable by the caller; never retried automatically.
	ErrStore = errors.New("store operation failed")
)
