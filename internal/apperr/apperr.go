// Package apperr classifies errors into the public reason string and
// HTTP status returned to clients, keeping internal error detail out of
// responses while still logging it server-side.
package apperr

import (
	"errors"
	"net/http"
)

// Reason is a short, stable, public-facing error tag. Unlike an error's
// Error() string, a Reason is part of the wire contract and must not
// change once shipped.
type Reason string

const (
	ReasonDatabase        Reason = "database"
	ReasonNotFound        Reason = "not_found"
	ReasonUnauthorized    Reason = "unauthorized"
	ReasonBadRequest      Reason = "bad_request"
	ReasonStateMismatch   Reason = "state_mismatch"
	ReasonInternal        Reason = "internal"
)

// Public is implemented by errors that carry their own public reason and
// HTTP status, instead of being classified generically.
type Public interface {
	error
	Public() (int, Reason)
}

// New wraps an error with a fixed public reason and status, for call
// sites that want to report something more specific than the generic
// classification in Classify.
func New(status int, reason Reason, msg string) error {
	return &publicError{status: status, reason: reason, msg: msg}
}

// Wrap attaches a public reason and status to an existing error, keeping
// the original error available via errors.Unwrap for logging.
func Wrap(err error, status int, reason Reason) error {
	return &publicError{status: status, reason: reason, msg: err.Error(), cause: err}
}

type publicError struct {
	status int
	reason Reason
	msg    string
	cause  error
}

func (e *publicError) Error() string        { return e.msg }
func (e *publicError) Unwrap() error         { return e.cause }
func (e *publicError) Public() (int, Reason) { return e.status, e.reason }

// Classify maps any error to the (HTTP status, public reason) pair an
// API handler should report. Errors implementing Public are classified
// via their own method; anything else (a bare pgx or database/sql error,
// for instance) is reported as an opaque internal/database failure so no
// internal detail leaks to the client.
func Classify(err error) (int, Reason) {
	if err == nil {
		return http.StatusOK, ""
	}
	var p Public
	if errors.As(err, &p) {
		return p.Public()
	}
	return http.StatusInternalServerError, ReasonInternal
}
