// Package listen watches Postgres NOTIFY traffic on the "invalidate"
// channel and fans each notification out to the sync sessions that care
// about it.
package listen

import (
	"sync/atomic"

	"github.com/flumox/flumox-server/internal/broadcast"
	"github.com/google/uuid"
)

// TeamKey addresses a single team's invalidation stream.
type TeamKey struct {
	Game uuid.UUID
	Team uuid.UUID
}

var onlineKey = struct{}{}
var reconnectKey = struct{}{}

// Channels holds every broadcast stream a sync session needs: whether
// the listener is currently connected, a "reconnect" pulse fired right
// after reconnecting (so sessions know to distrust whatever they cached
// while disconnected), and per-game/per-team invalidation streams.
type Channels struct {
	online         *broadcast.ChannelMap[struct{}, bool]
	reconnect      *broadcast.ChannelMap[struct{}, struct{}]
	invalidateGame *broadcast.ChannelMap[uuid.UUID, struct{}]
	invalidateTeam *broadcast.ChannelMap[TeamKey, struct{}]
	onlineState    atomic.Bool
}

// NewChannels builds an empty Channels, sizing every stream's per-receiver
// buffer to capacity.
func NewChannels(capacity int) *Channels {
	return &Channels{
		online:         broadcast.NewChannelMap[struct{}, bool](capacity),
		reconnect:      broadcast.NewChannelMap[struct{}, struct{}](capacity),
		invalidateGame: broadcast.NewChannelMap[uuid.UUID, struct{}](capacity),
		invalidateTeam: broadcast.NewChannelMap[TeamKey, struct{}](capacity),
	}
}

// SubscribeOnline reports every transition of listener connectivity.
func (c *Channels) SubscribeOnline() *broadcast.Receiver[struct{}, bool] {
	return c.online.Subscribe(onlineKey)
}

// SubscribeReconnect fires once each time the listener reconnects.
func (c *Channels) SubscribeReconnect() *broadcast.Receiver[struct{}, struct{}] {
	return c.reconnect.Subscribe(reconnectKey)
}

// SubscribeGame fires whenever the game as a whole is invalidated (a
// message with no team); per-team invalidations reach only SubscribeTeam
// receivers.
func (c *Channels) SubscribeGame(game uuid.UUID) *broadcast.Receiver[uuid.UUID, struct{}] {
	return c.invalidateGame.Subscribe(game)
}

// SubscribeTeam fires whenever the given team is invalidated.
func (c *Channels) SubscribeTeam(game, team uuid.UUID) *broadcast.Receiver[TeamKey, struct{}] {
	return c.invalidateTeam.Subscribe(TeamKey{Game: game, Team: team})
}

// Online reports the listener's last known connectivity state.
func (c *Channels) Online() bool { return c.onlineState.Load() }

func (c *Channels) setOnline(v bool) {
	if c.onlineState.Swap(v) != v {
		c.online.Send(onlineKey, v)
	}
}

func (c *Channels) sendReconnect() {
	c.reconnect.Send(reconnectKey, struct{}{})
}

func (c *Channels) invalidateGameMsg(game uuid.UUID) {
	c.invalidateGame.Send(game, struct{}{})
}

func (c *Channels) invalidateTeamMsg(game, team uuid.UUID) {
	c.invalidateTeam.Send(TeamKey{Game: game, Team: team}, struct{}{})
}
