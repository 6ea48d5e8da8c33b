package action

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/flumox/flumox-server/internal/listen"
	"github.com/flumox/flumox-server/internal/platform/logger"
	"github.com/flumox/flumox-server/internal/storage"
	"github.com/flumox/flumox-server/internal/widget"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *storage.Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping action integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, storage.EnsureSchema(context.Background(), pool))
	return storage.NewStore(pool)
}

func TestSubmitAnswerPersistsAndNotifies(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	pool := store.Pool()

	gameID, teamID, widgetID := uuid.New(), uuid.New(), uuid.New()
	_, err := pool.Exec(ctx, `INSERT INTO game (id, name) VALUES ($1, $2)`, gameID, "g")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO team (id, game, name, access_code) VALUES ($1, $2, $3, $4)`,
		teamID, gameID, "t", "code")
	require.NoError(t, err)

	cfg := widget.Config{Kind: widget.KindPrompt, Prompt: &widget.PromptConfig{
		Heading:   "q",
		Solutions: []widget.Solution{{Kind: widget.SolutionAlphanumeric, Alphanumeric: "answer"}},
	}}
	cfgJSON, err := json.Marshal(cfg)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO widget (id, game, ident, config) VALUES ($1, $2, $3, $4)`,
		widgetID, gameID, "riddle", cfgJSON)
	require.NoError(t, err)

	channels := listen.NewChannels(4)
	log := logger.New(logger.Options{})

	listenCtx, cancelListen := context.WithCancel(ctx)
	defer cancelListen()
	onlineSub := channels.SubscribeOnline()
	defer onlineSub.Close()
	go listen.Run(listenCtx, pool, channels, log)
	select {
	case <-onlineSub.C():
	case <-time.After(5 * time.Second):
		t.Fatal("invalidation listener never came online")
	}

	teamSub := channels.SubscribeTeam(gameID, teamID)
	defer teamSub.Close()

	result, err := Submit(ctx, store, channels, nil, gameID, teamID, widgetID,
		widget.Action{Kind: widget.ActionAnswer, Answer: "answer"}, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Toast)
	require.Equal(t, widget.ToastSuccess, result.Toast.Class)

	select {
	case <-teamSub.C():
	case <-time.After(time.Second):
		t.Fatal("expected a team invalidation notification")
	}

	game, _, err := store.LoadState(ctx, nil, gameID, teamID)
	require.NoError(t, err)
	require.True(t, game.Instance["riddle"].State.Prompt.Solved)
}
