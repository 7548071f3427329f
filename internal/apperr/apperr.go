// Package apperr defines the error kinds shared by the session, access,
// repository and service layers, and how each kind maps onto an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kinds. Wrap them with New (or the helpers below) to attach a client message.
var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("conflict")
)

// Error carries a client-safe message and optional per-field details.
type Error struct {
	kind    error
	Message string
	Details map[string]string
}

func New(kind error, message string) *Error {
	return &Error{kind: kind, Message: message}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.kind }

// WithDetail returns e with a field-level detail added.
func (e *Error) WithDetail(field, problem string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[field] = problem
	return e
}

func Unauthenticated(format string, args ...any) *Error {
	return New(ErrUnauthenticated, fmt.Sprintf(format, args...))
}

func Forbidden(format string, args ...any) *Error {
	return New(ErrForbidden, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(ErrNotFound, fmt.Sprintf(format, args...))
}

func Invalid(format string, args ...any) *Error {
	return New(ErrInvalidInput, fmt.Sprintf(format, args...))
}

func InvalidOperation(format string, args ...any) *Error {
	return New(ErrInvalidOperation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(ErrConflict, fmt.Sprintf(format, args...))
}

// Status maps err onto an HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidOperation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the message and details that may be shown to a client.
// Server errors never leak their text.
func Public(err error) (string, map[string]string) {
	if Status(err) >= http.StatusInternalServerError {
		return "Internal server error", nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Error(), e.Details
	}
	return err.Error(), nil
}
