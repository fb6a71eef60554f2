package domain

import (
	"errors"
	"net/http"
)

type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindAlreadyExists     ErrorKind = "already_exists"
	KindForbidden         ErrorKind = "forbidden"
	KindValidationFailed  ErrorKind = "validation_failed"
	KindDatabaseError     ErrorKind = "database_error"
	KindInsufficientStock ErrorKind = "insufficient_stock"
)

// Error is the domain-level failure every service operation returns instead of
// leaking storage exceptions. Status follows the REST conventions this API
// uses: not-found is reported as 400 with a "not found" detail.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches the underlying storage error for logging; the cause is
// never rendered to clients.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusBadRequest, Message: msg}
}

func AlreadyExists(msg string) *Error {
	return &Error{Kind: KindAlreadyExists, Status: http.StatusConflict, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

func ValidationFailed(msg string) *Error {
	return &Error{Kind: KindValidationFailed, Status: http.StatusBadRequest, Message: msg}
}

func DatabaseError(msg string) *Error {
	return &Error{Kind: KindDatabaseError, Status: http.StatusInternalServerError, Message: msg}
}

func InsufficientStock(msg string) *Error {
	return &Error{Kind: KindInsufficientStock, Status: http.StatusBadRequest, Message: msg}
}

// AsError extracts a domain error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}
