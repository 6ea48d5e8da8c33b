package storage

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/flumox/flumox-server/internal/widget"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// testPool connects to the database named by TEST_DATABASE_URL, skipping
// the test entirely when it isn't set: these tests exercise real SQL
// against real Postgres and aren't meaningful against a mock.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping storage integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, EnsureSchema(context.Background(), pool))
	return pool
}

func seedGame(t *testing.T, pool *pgxpool.Pool) (gameID, teamID, widgetID uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	gameID, teamID, widgetID = uuid.New(), uuid.New(), uuid.New()

	_, err := pool.Exec(ctx, `INSERT INTO game (id, name) VALUES ($1, $2)`, gameID, "Test Game")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO team (id, game, name, access_code) VALUES ($1, $2, $3, $4)`,
		teamID, gameID, "Test Team", "supersecret")
	require.NoError(t, err)

	cfg := widget.Config{Kind: widget.KindText, Text: &widget.TextConfig{Heading: "hi"}}
	cfgJSON, err := json.Marshal(cfg)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO widget (id, game, ident, config) VALUES ($1, $2, $3, $4)`,
		widgetID, gameID, "intro", cfgJSON)
	require.NoError(t, err)

	return gameID, teamID, widgetID
}

func TestLoginAndTeamBySessionToken(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	gameID, teamID, _ := seedGame(t, pool)

	rGame, rTeam, name, tok, err := store.Login(context.Background(), "supersecret")
	require.NoError(t, err)
	require.Equal(t, gameID, rGame)
	require.Equal(t, teamID, rTeam)
	require.Equal(t, "Test Team", name)

	gotGame, gotTeam, err := store.TeamBySessionToken(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, gameID, gotGame)
	require.Equal(t, teamID, gotTeam)
}

func TestLoginRejectsBadAccessCode(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	seedGame(t, pool)

	_, _, _, _, err := store.Login(context.Background(), "wrong-code")
	require.ErrorIs(t, err, ErrInvalidAccessCode)
}

func TestLoadStateAndSetState(t *testing.T) {
	pool := testPool(t)
	store := NewStore(pool)
	gameID, teamID, widgetID := seedGame(t, pool)

	game, ids, err := store.LoadState(context.Background(), nil, gameID, teamID)
	require.NoError(t, err)
	require.Equal(t, widgetID, ids["intro"])
	require.Equal(t, widget.KindText, game.Instance["intro"].State.Kind)

	newState := widget.State{Kind: widget.KindText, Text: &widget.TextState{}}
	require.NoError(t, store.SetState(context.Background(), nil, gameID, widgetID, teamID, newState))
	require.NoError(t, store.AddAction(context.Background(), nil, gameID, teamID, widgetID,
		widget.Action{Kind: widget.ActionAnswer, Answer: "x"}, time.Now()))

	game, _, err = store.LoadState(context.Background(), nil, gameID, teamID)
	require.NoError(t, err)
	require.Equal(t, widget.KindText, game.Instance["intro"].State.Kind)
}
