// Package common defines shared constants and sentinel errors used across
// the transport, service and storage layers of faceauth. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors. Each specific error wraps ErrorValidation so that
	// transports can map the whole family to a single status.
	ErrorValidation        = errors.New("validation error")
	ErrorInvalidUsername   = fmt.Errorf("%w: invalid username", ErrorValidation)
	ErrorInvalidDescriptor = fmt.Errorf("%w: invalid descriptor", ErrorValidation)

	// Conflict errors.
	ErrorUsernameTaken = fmt.Errorf("username already taken: %w", ErrorAlreadyExists)

	// Startup errors (missing or malformed settings).
	ErrorConfiguration = errors.New("configuration error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
