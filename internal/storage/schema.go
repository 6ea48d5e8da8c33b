package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is the set of DDL statements that bring a fresh database up to
// the schema this package expects, applied in order. Each statement is
// idempotent so EnsureSchema can run safely against an already-migrated
// database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS game (
		id   uuid PRIMARY KEY,
		name text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS team (
		id          uuid PRIMARY KEY,
		game        uuid NOT NULL REFERENCES game(id),
		name        text NOT NULL,
		access_code text NOT NULL,
		attributes  jsonb NOT NULL DEFAULT '{}'
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS team_access_code_idx ON team (game, access_code)`,
	`CREATE TABLE IF NOT EXISTS widget (
		id     uuid PRIMARY KEY,
		game   uuid NOT NULL REFERENCES game(id),
		ident  text NOT NULL,
		config jsonb NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS widget_game_ident_idx ON widget (game, ident)`,
	`CREATE TABLE IF NOT EXISTS state (
		game   uuid NOT NULL REFERENCES game(id),
		widget uuid NOT NULL REFERENCES widget(id),
		team   uuid NOT NULL REFERENCES team(id),
		state  jsonb NOT NULL,
		PRIMARY KEY (game, widget, team)
	)`,
	`CREATE TABLE IF NOT EXISTS action (
		id      uuid PRIMARY KEY,
		game    uuid NOT NULL REFERENCES game(id),
		team    uuid NOT NULL REFERENCES team(id),
		widget  uuid NOT NULL REFERENCES widget(id),
		created timestamptz NOT NULL,
		payload jsonb NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS action_team_created_idx ON action (team, created)`,
	`CREATE TABLE IF NOT EXISTS session (
		token   bytea PRIMARY KEY,
		game    uuid NOT NULL REFERENCES game(id),
		team    uuid NOT NULL REFERENCES team(id),
		created timestamptz NOT NULL
	)`,
}

// EnsureSchema runs every statement in schema against pool, in order.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("storage: apply schema: %w", err)
		}
	}
	return nil
}
