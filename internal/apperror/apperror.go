// Package apperror defines the error taxonomy shared by every layer.
//
// Each failure kind has a sentinel error (ErrNotFound, ErrDuplicateAccount, ...)
// and a constructor that wraps the sentinel in an *AppError carrying a short,
// user-safe Message. Callers test the kind with errors.Is and read the message
// with errors.As:
//
//	if errors.Is(err, apperror.ErrNotFound) { ... }
//
// Handlers translate kinds into HTTP status codes; services never do.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation error")
	ErrDuplicateAccount      = errors.New("duplicate account")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrNotAuthenticated      = errors.New("not authenticated")
	ErrGenerationUnavailable = errors.New("generation unavailable")
	ErrIdentifierCollision   = errors.New("identifier collision")
	ErrStorage               = errors.New("storage failure")
)

type AppError struct {
	Err     error  // sentinel identifying the kind
	Message string // human-readable, safe to show to users
	Field   string // optional: input field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateAccount is returned when registering an email that already exists.
func DuplicateAccount(email string) *AppError {
	return &AppError{
		Err:     ErrDuplicateAccount,
		Message: fmt.Sprintf("an account with email %s already exists", email),
		Field:   "email",
	}
}

// InvalidCredentials deliberately does not say which of email or secret was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "invalid email or password",
	}
}

func NotAuthenticated() *AppError {
	return &AppError{
		Err:     ErrNotAuthenticated,
		Message: "you must be logged in to do that",
	}
}

// GenerationUnavailable marks a transient failure of the text model.
func GenerationUnavailable() *AppError {
	return &AppError{
		Err:     ErrGenerationUnavailable,
		Message: "copy generation is temporarily unavailable, please try again",
	}
}

func IdentifierCollision(id string) *AppError {
	return &AppError{
		Err:     ErrIdentifierCollision,
		Message: fmt.Sprintf("identifier %s is already in use", id),
	}
}

// StorageFailure hides the underlying cause; callers log it before converting.
func StorageFailure(operation string) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: fmt.Sprintf("storage failure while %s", operation),
	}
}
