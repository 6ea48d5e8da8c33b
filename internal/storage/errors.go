package storage

import (
	"errors"
	"net/http"

	"github.com/flumox/flumox-server/internal/apperr"
)

// ErrStateMismatch is returned by LoadState when a persisted state row's
// widget kind doesn't match the kind currently configured for that
// widget ident, which can only happen if a game's widget definitions
// were edited incompatibly after teams had already started playing.
var ErrStateMismatch = apperr.New(http.StatusConflict, apperr.ReasonStateMismatch, "storage: persisted state does not match widget kind")

// ErrNotFound is returned when a lookup (a team, a session) finds
// nothing matching.
var ErrNotFound = apperr.New(http.StatusNotFound, apperr.ReasonNotFound, "storage: not found")

// ErrInvalidAccessCode is returned by Login when no team matches the
// supplied access code.
var ErrInvalidAccessCode = apperr.New(http.StatusUnauthorized, apperr.ReasonUnauthorized, "storage: invalid access code")

func wrapDatabase(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStateMismatch) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidAccessCode) {
		return err
	}
	return apperr.Wrap(err, http.StatusInternalServerError, apperr.ReasonDatabase)
}
