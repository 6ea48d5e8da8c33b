package sync

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/flumox/flumox-server/internal/listen"
	"github.com/flumox/flumox-server/internal/platform/logger"
	"github.com/flumox/flumox-server/internal/session"
	"github.com/flumox/flumox-server/internal/storage"
	"github.com/flumox/flumox-server/internal/timeexpr"
	"github.com/flumox/flumox-server/internal/view"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	minWait = 10 * time.Millisecond
	maxWait = 10 * time.Second
)

// clampWait bounds d to [minWait, maxWait]: long enough not to busy-poll
// the database on a countdown that's hours away, short enough that a
// clock skew or a missed notification is never more than ten seconds
// stale.
func clampWait(d time.Duration) time.Duration {
	if d < minWait {
		return minWait
	}
	if d > maxWait {
		return maxWait
	}
	return d
}

// Run drives one websocket connection end to end: wait for an auth
// message, resolve it to a team, send that team's current view, and then
// keep pushing fresh views until the connection closes or ctx is
// cancelled.
func Run(ctx context.Context, ws *websocket.Conn, store *storage.Store, channels *listen.Channels, log *logger.Logger) error {
	c := newConn(ws, log)
	go c.readPump()
	defer c.close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	gameID, teamID, err := waitAuth(ctx, c, store, ticker)
	if err != nil || gameID == uuid.Nil {
		return err
	}

	gameSub := channels.SubscribeGame(gameID)
	defer gameSub.Close()
	teamSub := channels.SubscribeTeam(gameID, teamID)
	defer teamSub.Close()
	reconnectSub := channels.SubscribeReconnect()
	defer reconnectSub.Close()

	var last view.Render
	if err := refresh(ctx, c, store, gameID, teamID, &last, true); err != nil {
		_ = c.send(outgoingMessage{Type: outError, Reason: classify(err)})
		return err
	}

	var timer *time.Timer
	for {
		var deadlineC <-chan time.Time
		if last.ValidUntil != nil {
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(clampWait(time.Until(*last.ValidUntil)))
			deadlineC = timer.C
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.closed:
			return nil
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return err
			}
		case raw, ok := <-c.incoming:
			if !ok {
				return nil
			}
			var msg incomingMessage
			if err := json.Unmarshal(raw, &msg); err == nil && msg.Type == "ping" {
				if err := c.send(outgoingMessage{Type: outPong}); err != nil {
					return err
				}
			}
			// Anything else from a live session, including a second auth
			// attempt, is simply ignored.
		case <-reconnectSub.C():
			if err := refresh(ctx, c, store, gameID, teamID, &last, false); err != nil {
				_ = c.send(outgoingMessage{Type: outError, Reason: classify(err)})
				return err
			}
		case <-gameSub.C():
			if err := refresh(ctx, c, store, gameID, teamID, &last, false); err != nil {
				_ = c.send(outgoingMessage{Type: outError, Reason: classify(err)})
				return err
			}
		case <-teamSub.C():
			if err := refresh(ctx, c, store, gameID, teamID, &last, false); err != nil {
				_ = c.send(outgoingMessage{Type: outError, Reason: classify(err)})
				return err
			}
		case <-deadlineC:
			if err := refresh(ctx, c, store, gameID, teamID, &last, false); err != nil {
				_ = c.send(outgoingMessage{Type: outError, Reason: classify(err)})
				return err
			}
		}
	}
}

// waitAuth blocks until the client sends a valid auth message, pinging
// periodically while it waits. It returns a zero gameID (with a nil
// error) once the connection has been closed or rejected, so the caller
// knows to stop without treating it as a failure.
func waitAuth(ctx context.Context, c *conn, store *storage.Store, ticker *time.Ticker) (uuid.UUID, uuid.UUID, error) {
	for {
		select {
		case <-ctx.Done():
			return uuid.Nil, uuid.Nil, ctx.Err()
		case <-c.closed:
			return uuid.Nil, uuid.Nil, nil
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return uuid.Nil, uuid.Nil, err
			}
		case raw, ok := <-c.incoming:
			if !ok {
				return uuid.Nil, uuid.Nil, nil
			}
			var msg incomingMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				_ = c.send(outgoingMessage{Type: outMalformedMessage})
				return uuid.Nil, uuid.Nil, nil
			}
			if msg.Type == "ping" {
				if err := c.send(outgoingMessage{Type: outPong}); err != nil {
					return uuid.Nil, uuid.Nil, err
				}
				continue
			}
			if msg.Type != "auth" {
				_ = c.send(outgoingMessage{Type: outMalformedMessage})
				return uuid.Nil, uuid.Nil, nil
			}
			tok, err := session.ParseToken(msg.Token)
			if err != nil {
				_ = c.send(outgoingMessage{Type: outUnknownToken})
				return uuid.Nil, uuid.Nil, nil
			}
			gameID, teamID, err := store.TeamBySessionToken(ctx, tok)
			if err != nil {
				_ = c.send(outgoingMessage{Type: outUnknownToken})
				return uuid.Nil, uuid.Nil, nil
			}
			if msg.Compress {
				c.enableCompress()
			}
			return gameID, teamID, nil
		}
	}
}

// classify maps an internal error to the small reason taxonomy a client is
// allowed to see: a bad widget configuration (an unresolvable expression)
// versus everything else, which is assumed to be a database failure.
func classify(err error) reason {
	var evalErr *timeexpr.EvalError
	if errors.As(err, &evalErr) {
		return reasonConfig
	}
	return reasonDatabase
}

// refresh reloads the team's state, re-renders it, and pushes the result
// to the client if it differs from last (or unconditionally, if force is
// set, for the very first send).
func refresh(ctx context.Context, c *conn, store *storage.Store, gameID, teamID uuid.UUID, last *view.Render, force bool) error {
	game, ids, err := store.LoadState(ctx, nil, gameID, teamID)
	if err != nil {
		return err
	}
	render, err := view.Build(game, ids, time.Now())
	if err != nil {
		return err
	}
	if !force && view.Equal(*last, render) {
		*last = render
		return nil
	}
	*last = render
	return c.send(outgoingMessage{Type: outView, Widgets: render.Widgets, ValidUntil: render.ValidUntil})
}
