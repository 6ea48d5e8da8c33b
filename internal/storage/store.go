// Package storage is the persistence layer: it loads and saves widget
// state, manages team sessions, and publishes invalidation notifications,
// all against PostgreSQL via pgx.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flumox/flumox-server/internal/session"
	"github.com/flumox/flumox-server/internal/view"
	"github.com/flumox/flumox-server/internal/widget"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so every method
// below can run either directly against the pool or inside a caller's
// transaction (the action package needs the latter, for the serializable
// read-modify-write around submitting an action).
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the persistence layer's entry point.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an already-configured pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool returns the underlying connection pool, for callers (the action
// package) that need to start their own transaction.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// LoadState loads every widget defined for game and the given team's
// state for each, building a widget.GameState ready to render or submit
// actions against. Widgets are ordered by their id. The widget table has
// no priority column, so no configured ordering is applied, and with
// random (v4) ids the order does not follow insertion order either.
func (s *Store) LoadState(ctx context.Context, q querier, gameID, teamID uuid.UUID) (*widget.GameState, view.IdentID, error) {
	if q == nil {
		q = s.pool
	}
	rows, err := q.Query(ctx, `
		SELECT widget.id, widget.ident, widget.config, state.state
		FROM widget
		LEFT JOIN state
			ON state.game = widget.game AND state.widget = widget.id AND state.team = $2
		WHERE widget.game = $1
		ORDER BY widget.id`, gameID, teamID)
	if err != nil {
		return nil, nil, wrapDatabase(err)
	}
	defer rows.Close()

	game := &widget.GameState{
		Team:     widget.Attributes{},
		Instance: map[string]*widget.Instance{},
	}
	ids := view.IdentID{}

	for rows.Next() {
		var id uuid.UUID
		var ident string
		var configJSON, stateJSON []byte
		if err := rows.Scan(&id, &ident, &configJSON, &stateJSON); err != nil {
			return nil, nil, wrapDatabase(err)
		}

		var cfg widget.Config
		if err := json.Unmarshal(configJSON, &cfg); err != nil {
			return nil, nil, wrapDatabase(fmt.Errorf("storage: decode widget %s config: %w", ident, err))
		}

		var st widget.State
		if stateJSON == nil {
			st = widget.NewState(cfg.Kind)
		} else {
			if err := json.Unmarshal(stateJSON, &st); err != nil {
				return nil, nil, wrapDatabase(fmt.Errorf("storage: decode widget %s state: %w", ident, err))
			}
			if st.Kind != cfg.Kind {
				return nil, nil, ErrStateMismatch
			}
		}

		game.Order = append(game.Order, ident)
		game.Instance[ident] = &widget.Instance{Ident: ident, Config: cfg, State: st}
		ids[ident] = id
	}
	if err := rows.Err(); err != nil {
		return nil, nil, wrapDatabase(err)
	}

	attrs, err := s.loadTeamAttributes(ctx, q, teamID)
	if err != nil {
		return nil, nil, err
	}
	game.Team = attrs

	return game, ids, nil
}

func (s *Store) loadTeamAttributes(ctx context.Context, q querier, teamID uuid.UUID) (widget.Attributes, error) {
	var attrsJSON []byte
	err := q.QueryRow(ctx, `SELECT attributes FROM team WHERE id = $1`, teamID).Scan(&attrsJSON)
	if err != nil {
		return nil, wrapDatabase(err)
	}
	if len(attrsJSON) == 0 {
		return widget.Attributes{}, nil
	}
	var attrs widget.Attributes
	if err := json.Unmarshal(attrsJSON, &attrs); err != nil {
		return nil, wrapDatabase(fmt.Errorf("storage: decode team attributes: %w", err))
	}
	return attrs, nil
}

// SetState persists a widget's new state for a team, inside q (normally a
// transaction the caller controls so the write is atomic with the
// invalidation notification and the action log entry).
func (s *Store) SetState(ctx context.Context, q querier, gameID, widgetID, teamID uuid.UUID, st widget.State) error {
	if q == nil {
		q = s.pool
	}
	stateJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("storage: encode state: %w", err)
	}
	_, err = q.Exec(ctx, `
		INSERT INTO state (game, widget, team, state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game, widget, team) DO UPDATE SET state = EXCLUDED.state`,
		gameID, widgetID, teamID, stateJSON)
	return wrapDatabase(err)
}

// AddAction appends an audit row recording an action a team performed
// against a widget. The row's id is a UUIDv7 so that ordering by id
// matches creation order without a separate sequence.
func (s *Store) AddAction(ctx context.Context, q querier, gameID, teamID, widgetID uuid.UUID, action widget.Action, created time.Time) error {
	if q == nil {
		q = s.pool
	}
	payload, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("storage: encode action: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("storage: generate action id: %w", err)
	}
	_, err = q.Exec(ctx, `
		INSERT INTO action (id, game, team, widget, created, payload)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, gameID, teamID, widgetID, created, payload)
	return wrapDatabase(err)
}

// Login resolves an access code to a game and team, and mints a fresh
// session token, all in one transaction so a concurrent login with the
// same code can't observe a team without ever getting a session.
func (s *Store) Login(ctx context.Context, accessCode string) (gameID, teamID uuid.UUID, teamName string, tok session.Token, err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, "", session.Token{}, wrapDatabase(err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `SELECT game, id, name FROM team WHERE access_code = $1`, accessCode).
		Scan(&gameID, &teamID, &teamName)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.UUID{}, uuid.UUID{}, "", session.Token{}, ErrInvalidAccessCode
		}
		return uuid.UUID{}, uuid.UUID{}, "", session.Token{}, wrapDatabase(err)
	}

	tok, err = session.NewToken()
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, "", session.Token{}, fmt.Errorf("storage: mint session token: %w", err)
	}
	tokBytes := tok[:]
	_, err = tx.Exec(ctx, `INSERT INTO session (token, game, team, created) VALUES ($1, $2, $3, now())`,
		tokBytes, gameID, teamID)
	if err != nil {
		return uuid.UUID{}, uuid.UUID{}, "", session.Token{}, wrapDatabase(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.UUID{}, uuid.UUID{}, "", session.Token{}, wrapDatabase(err)
	}
	return gameID, teamID, teamName, tok, nil
}

// TeamInfo is the small, public summary of a team returned after login
// and from the "me" endpoint.
type TeamInfo struct {
	Game uuid.UUID `json:"game"`
	Team uuid.UUID `json:"team"`
	Name string    `json:"name"`
}

// TeamInfo loads the public summary for a team already known to belong
// to gameID.
func (s *Store) TeamInfo(ctx context.Context, gameID, teamID uuid.UUID) (TeamInfo, error) {
	var name string
	err := s.pool.QueryRow(ctx, `SELECT name FROM team WHERE id = $1 AND game = $2`, teamID, gameID).Scan(&name)
	if err != nil {
		if err == pgx.ErrNoRows {
			return TeamInfo{}, ErrNotFound
		}
		return TeamInfo{}, wrapDatabase(err)
	}
	return TeamInfo{Game: gameID, Team: teamID, Name: name}, nil
}

// TeamBySessionToken resolves a bearer token to the game and team it
// authenticates.
func (s *Store) TeamBySessionToken(ctx context.Context, tok session.Token) (gameID, teamID uuid.UUID, err error) {
	tokBytes := tok[:]
	err = s.pool.QueryRow(ctx, `SELECT game, team FROM session WHERE token = $1`, tokBytes).Scan(&gameID, &teamID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.UUID{}, uuid.UUID{}, ErrNotFound
		}
		return uuid.UUID{}, uuid.UUID{}, wrapDatabase(err)
	}
	return gameID, teamID, nil
}
