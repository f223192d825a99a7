// Package common defines the sentinel errors shared by the repositories,
// services and the web layer of the blog portal. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrInfrastructure means the store could not serve the request. The
	// underlying cause is logged, never returned to the caller.
	ErrInfrastructure = errors.New("storage unavailable")

	// Identity errors.
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Authorization errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")

	// Validation errors.
	ErrEmptyContent = errors.New("empty content")
	ErrValidation   = errors.New("validation failed")

	// Session token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
