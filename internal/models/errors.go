package models

import "errors"

// Error taxonomy shared by repositories, services and handlers.
// Handlers are the only place these are translated into HTTP statuses.
var (
	// ErrValidation marks malformed or missing input. Details are wrapped with %w.
	ErrValidation = errors.New("validation failed")

	// ErrUserAlreadyExists is returned when a write would break username or email uniqueness.
	ErrUserAlreadyExists = errors.New("username or email already exists")

	// ErrUserNotFound is returned for absent and soft-deleted users alike.
	ErrUserNotFound = errors.New("user not found")

	// ErrTooManyLoginAttempts is returned when a username exceeded the failed login limit.
	ErrTooManyLoginAttempts = errors.New("too many login attempts")
)
