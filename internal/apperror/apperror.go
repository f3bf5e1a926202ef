// Package apperror defines the error taxonomy shared by the service and handler layers.
//
// Every classified failure is an *AppError wrapping one of the sentinel errors
// below. Callers classify with errors.Is (which sentinel?) and read the
// human-readable text with errors.As (what do we tell the client?).
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal error")
)

// InternalMessage is the only text a client ever sees for an unclassified failure.
const InternalMessage = "An internal error occurred"

type AppError struct {
	Err     error  // sentinel used for classification
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying fault, for logs only
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause so errors.Is matches either.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// Unauthorized returns an AppError for rejected credentials or tokens.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Internal masks cause behind InternalMessage. The cause stays reachable
// through Unwrap so it can be logged, but Message never leaks it.
func Internal(cause error) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: InternalMessage,
		Cause:   cause,
	}
}

// IsClassified reports whether err carries one of the client-facing
// categories (everything except ErrInternal).
func IsClassified(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return !errors.Is(appErr.Err, ErrInternal)
}
