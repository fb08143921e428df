package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipebox/internal/backend"
)

// AuthKind classifies authentication failures.
type AuthKind int

const (
	AuthFailed AuthKind = iota
	InvalidCredentials
	DuplicateAccount
	WeakPassword
	InvalidEmail
)

func (k AuthKind) String() string {
	switch k {
	case InvalidCredentials:
		return "invalid credentials"
	case DuplicateAccount:
		return "duplicate account"
	case WeakPassword:
		return "weak password"
	case InvalidEmail:
		return "invalid email"
	default:
		return "auth failed"
	}
}

// AuthError is returned by Login and Register. Message is the text the
// platform reported.
type AuthError struct {
	Kind    AuthKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

func (e *AuthError) Unwrap() []error {
	errs := []error{e.Err}
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	return errs
}

// Sentinels matching AuthError kinds, so callers can use errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("duplicate account")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidEmail       = errors.New("invalid email")
)

func (k AuthKind) sentinel() error {
	switch k {
	case InvalidCredentials:
		return ErrInvalidCredentials
	case DuplicateAccount:
		return ErrDuplicateAccount
	case WeakPassword:
		return ErrWeakPassword
	case InvalidEmail:
		return ErrInvalidEmail
	default:
		return nil
	}
}

func newAuthError(err error) *AuthError {
	kind := AuthFailed
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		kind = InvalidCredentials
	case errors.Is(err, backend.ErrUserAlreadyRegistered):
		kind = DuplicateAccount
	case errors.Is(err, backend.ErrWeakPassword):
		kind = WeakPassword
	case errors.Is(err, backend.ErrInvalidEmail):
		kind = InvalidEmail
	}
	return &AuthError{Kind: kind, Message: err.Error(), Err: err}
}

var (
	// ErrNotAuthenticated is returned by catalog mutations that need a user.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRecipeNotFound   = errors.New("recipe not found")
)

// RemoteWriteError wraps a failed remote mutation.
type RemoteWriteError struct {
	Op  string
	Err error
}

func (e *RemoteWriteError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *RemoteWriteError) Unwrap() error { return e.Err }

// RemoteReadError wraps a failed remote read.
type RemoteReadError struct {
	Op  string
	Err error
}

func (e *RemoteReadError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *RemoteReadError) Unwrap() error { return e.Err }

// StorageUploadError is returned when the recipe image could not be stored.
type StorageUploadError struct {
	Path string
	Err  error
}

func (e *StorageUploadError) Error() string {
	return fmt.Sprintf("upload image %s: %v", e.Path, e.Err)
}
func (e *StorageUploadError) Unwrap() error { return e.Err }

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrIngredientsRequired = errors.New("at least one ingredient is required and none may be empty")
	ErrStepsRequired       = errors.New("at least one step is required and none may be empty")
	ErrCookingTimeInvalid  = errors.New("cooking time must be a positive number of minutes")
	ErrCategoryInvalid     = errors.New("category is not valid")
)

// ValidationError reports the first rule a draft breaks.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }
