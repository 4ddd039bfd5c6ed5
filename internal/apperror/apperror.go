// Package apperror defines the application's error taxonomy.
//
// Services return these errors and the HTTP layer maps them to status codes
// (see internal/handler/response.go). Four kinds cover every caller-visible
// failure:
//
//	ErrNotFound   → 404  referenced entity does not exist
//	ErrValidation → 400  malformed input
//	ErrConflict   → 409  uniqueness violation
//	ErrForbidden  → 403  actor lacks the role/ownership required
//
// Check with errors.Is(err, apperror.ErrNotFound) — AppError implements
// Unwrap so the sentinels survive any amount of fmt.Errorf("%w") wrapping.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

type AppError struct {
	Err     error  // sentinel classifying the error
	Message string // human-readable error message
	Field   string // optional: field causing the error
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

// Conflict reports a uniqueness violation, e.g. a duplicate username or
// language name. The message should say which value collided.
func Conflict(resource, message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s: %s", resource, message),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}
