// Package action implements submitting a team's action (an answer, a
// hint request) against a widget: load state, evaluate the effect,
// persist it, and notify anyone watching, all inside one serializable
// transaction retried a bounded number of times on conflict.
package action

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flumox/flumox-server/internal/apperr"
	"github.com/flumox/flumox-server/internal/listen"
	"github.com/flumox/flumox-server/internal/storage"
	"github.com/flumox/flumox-server/internal/view"
	"github.com/flumox/flumox-server/internal/widget"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// retryDelays is how long Submit waits before each retry attempt after a
// serialization failure or deadlock. The first attempt is immediate.
var retryDelays = []time.Duration{
	0,
	16 * time.Millisecond,
	32 * time.Millisecond,
	64 * time.Millisecond,
	128 * time.Millisecond,
	256 * time.Millisecond,
}

// ErrTooManyRetries is returned once every retry in retryDelays has been
// exhausted without the transaction succeeding.
var ErrTooManyRetries = apperr.New(http.StatusConflict, apperr.ReasonDatabase, "action: too many conflicting concurrent submissions")

// ErrRateLimited is returned when a RateLimiter rejects a submission.
var ErrRateLimited = apperr.New(http.StatusTooManyRequests, apperr.ReasonBadRequest, "action: team is submitting actions too quickly")

// Result is the outcome of a successful Submit: the team's freshly
// rendered view, and the toast to show for the action just taken.
type Result struct {
	Render view.Render
	Toast  *widget.Toast
}

// Clock is how Submit reads the current time, overridable in tests.
type Clock func() time.Time

// Submit processes act against the widget identified by widgetID on
// behalf of teamID in gameID, retrying on transaction conflicts per
// retryDelays. limiter may be nil to submit unthrottled.
func Submit(ctx context.Context, store *storage.Store, channels *listen.Channels, limiter *RateLimiter, gameID, teamID, widgetID uuid.UUID, act widget.Action, clock Clock) (Result, error) {
	if clock == nil {
		clock = time.Now
	}

	if !limiter.Allow(teamID, clock()) {
		return Result{}, ErrRateLimited
	}

	var lastErr error
	for i := 0; i <= len(retryDelays); i++ {
		if i > 0 && retryDelays[i-1] > 0 {
			timer := time.NewTimer(retryDelays[i-1])
			select {
			case <-ctx.Done():
				timer.Stop()
				return Result{}, ctx.Err()
			case <-timer.C:
			}
		}

		result, retry, err := attempt(ctx, store, channels, gameID, teamID, widgetID, act, clock())
		if err == nil {
			return result, nil
		}
		if !retry {
			return Result{}, err
		}
		lastErr = err
	}
	if lastErr != nil {
		return Result{}, ErrTooManyRetries
	}
	return Result{}, ErrTooManyRetries
}

func attempt(ctx context.Context, store *storage.Store, channels *listen.Channels, gameID, teamID, widgetID uuid.UUID, act widget.Action, now time.Time) (Result, bool, error) {
	tx, err := store.Pool().BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return Result{}, isRetryable(err), err
	}
	defer tx.Rollback(ctx)

	game, ids, err := store.LoadState(ctx, tx, gameID, teamID)
	if err != nil {
		return Result{}, isRetryable(err), err
	}

	ident, ok := identForWidget(ids, widgetID)
	if !ok {
		return Result{}, false, widget.ErrUnknownIdent(widgetID.String())
	}

	effect, err := game.Submit(ident, now, act)
	if err != nil {
		return Result{}, false, err
	}

	if effect.NewState.Kind != "" {
		if err := store.SetState(ctx, tx, gameID, widgetID, teamID, effect.NewState); err != nil {
			return Result{}, isRetryable(err), err
		}
		if err := store.AddAction(ctx, tx, gameID, teamID, widgetID, act, now); err != nil {
			return Result{}, isRetryable(err), err
		}
		if err := store.Notify(ctx, tx, storage.InvalidateMessage{Game: gameID, Team: &teamID}); err != nil {
			return Result{}, isRetryable(err), err
		}
		game.Instance[ident].State = effect.NewState
	}

	render, err := view.Build(game, ids, now)
	if err != nil {
		return Result{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, isRetryable(err), err
	}

	return Result{Render: render, Toast: effect.Toast}, false, nil
}

// identForWidget reverse-looks-up the ident a widget id was assigned to,
// since clients address widgets by id but the widget engine works in
// idents.
func identForWidget(ids view.IdentID, widgetID uuid.UUID) (string, bool) {
	for ident, id := range ids {
		if id == widgetID {
			return ident, true
		}
	}
	return "", false
}

// isRetryable reports whether err is a serialization failure or deadlock
// that a fresh transaction attempt might avoid.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
