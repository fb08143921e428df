package backend

import "errors"

// The messages match what the hosted auth platform returns, since the client
// maps them to user-facing text.
var (
	ErrInvalidCredentials    = errors.New("Invalid login credentials")
	ErrUserAlreadyRegistered = errors.New("User already registered")
	ErrWeakPassword          = errors.New("Password should be at least 6 characters.")
	ErrInvalidEmail          = errors.New("Invalid email")

	ErrNotFound       = errors.New("not found")
	ErrSessionExpired = errors.New("session expired")
	ErrUnavailable    = errors.New("backend unavailable")
)
