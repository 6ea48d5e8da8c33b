package listen

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flumox/flumox-server/internal/platform/logger"
	"github.com/flumox/flumox-server/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reconnectDelay is how long Run waits after a connection is lost before
// trying again.
const reconnectDelay = time.Second

// Run holds a dedicated connection LISTENing for invalidate notifications
// and routes each one to channels, reconnecting with a fixed backoff for
// as long as ctx is alive. It is meant to run for the life of the server
// in its own goroutine.
func Run(ctx context.Context, pool *pgxpool.Pool, channels *Channels, log *logger.Logger) {
	for {
		if err := runConnection(ctx, pool, channels, log); err != nil {
			channels.setOnline(false)
			if ctx.Err() != nil {
				return
			}
			log.Warn("invalidation listener disconnected: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func runConnection(ctx context.Context, pool *pgxpool.Pool, channels *Channels, log *logger.Logger) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN invalidate"); err != nil {
		return err
	}

	channels.sendReconnect()
	channels.setOnline(true)
	log.Info("invalidation listener connected")

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var msg storage.InvalidateMessage
		if err := json.Unmarshal([]byte(notification.Payload), &msg); err != nil {
			log.Warn("invalidation listener: malformed payload: " + err.Error())
			continue
		}
		if msg.Team != nil {
			channels.invalidateTeamMsg(msg.Game, *msg.Team)
		} else {
			channels.invalidateGameMsg(msg.Game)
		}
	}
}
