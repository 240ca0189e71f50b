package model

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by repositories and usecases. Handlers map these
// onto HTTP status codes.
var (
	// ErrNotFound means the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotOwner means the caller addressed a record it does not own.
	ErrNotOwner = errors.New("caller does not own this resource")
	// ErrPostedImmutable rejects mutation or deletion of published history.
	ErrPostedImmutable = errors.New("posted records are immutable")
)

// ValidationError describes a malformed schedule or connect request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConnectionError wraps a failure in the OAuth authorization-code exchange.
type ConnectionError struct {
	Platform Platform
	Step     string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s connect failed at %s: %v", e.Platform, e.Step, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
