package listen

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/flumox/flumox-server/internal/platform/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestRunRoutesNotifications(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping listener integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	channels := NewChannels(4)
	log := logger.New(logger.Options{})

	online := channels.SubscribeOnline()
	defer online.Close()
	go Run(ctx, pool, channels, log)

	select {
	case v := <-online.C():
		require.True(t, v)
	case <-time.After(5 * time.Second):
		t.Fatal("listener never came online")
	}

	game := uuid.New()
	gameSub := channels.SubscribeGame(game)
	defer gameSub.Close()

	_, err = pool.Exec(ctx, `SELECT pg_notify('invalidate', $1::text)`,
		`{"game":"`+game.String()+`"}`)
	require.NoError(t, err)

	select {
	case <-gameSub.C():
	case <-time.After(5 * time.Second):
		t.Fatal("expected game invalidation to be routed")
	}
}
