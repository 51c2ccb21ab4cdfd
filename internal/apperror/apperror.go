// Package apperror defines the error taxonomy the API boundary speaks.
// Handlers translate every failure into one of these kinds; nothing else
// crosses the boundary.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrInvalidSession    = errors.New("invalid session")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrUpstream          = errors.New("upstream failure")
	ErrNotFound          = errors.New("not found")
	ErrInternal          = errors.New("internal error")
)

type Error struct {
	Err     error  // taxonomy sentinel
	Message string // stable, user-facing message
	Details string // optional underlying cause, safe to echo
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidInput(message string) *Error {
	return &Error{Err: ErrInvalidInput, Message: message}
}

func Unauthenticated(message string) *Error {
	return &Error{Err: ErrUnauthenticated, Message: message}
}

func InvalidSession(message string) *Error {
	return &Error{Err: ErrInvalidSession, Message: message}
}

func InvalidCredential(message string) *Error {
	return &Error{Err: ErrInvalidCredential, Message: message}
}

func Upstream(message string, cause error) *Error {
	e := &Error{Err: ErrUpstream, Message: message}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func NotFound(message string) *Error {
	return &Error{Err: ErrNotFound, Message: message}
}

func Internal(message string, cause error) *Error {
	e := &Error{Err: ErrInternal, Message: message}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// Status maps an error to its HTTP status code. Missing or expired auth is
// 401, a token that fails the signature check is 403, everything unknown
// falls through to 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidCredential):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
