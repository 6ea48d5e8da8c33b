package storage

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// InvalidateMessage is the payload published over Postgres NOTIFY when a
// team's state changes: Team identifies the specific team whose widgets
// changed, or is nil to invalidate every team in the game (used when a
// game-wide attribute like a countdown's target time changes).
type InvalidateMessage struct {
	Game uuid.UUID  `json:"game"`
	Team *uuid.UUID `json:"team,omitempty"`
}

// Notify publishes msg on the "invalidate" channel, inside q (normally
// the same transaction that just wrote the state the message announces,
// so a listener never observes the notification before the write it
// describes is visible).
func (s *Store) Notify(ctx context.Context, q querier, msg InvalidateMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	_, err = q.Exec(ctx, `SELECT pg_notify('invalidate', $1::text)`, string(payload))
	return wrapDatabase(err)
}
