package action

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterDisabledByDefault(t *testing.T) {
	var rl *RateLimiter
	team := uuid.New()
	now := time.Now()
	assert.True(t, rl.Allow(team, now))
	assert.True(t, rl.Allow(team, now))
}

func TestRateLimiterZeroIntervalAllowsAll(t *testing.T) {
	rl := NewRateLimiter(0)
	team := uuid.New()
	now := time.Now()
	assert.True(t, rl.Allow(team, now))
	assert.True(t, rl.Allow(team, now))
}

func TestRateLimiterThrottlesPerTeam(t *testing.T) {
	rl := NewRateLimiter(15 * time.Second)
	teamA, teamB := uuid.New(), uuid.New()
	now := time.Now()

	assert.True(t, rl.Allow(teamA, now))
	assert.False(t, rl.Allow(teamA, now.Add(5*time.Second)), "second action too soon")
	assert.True(t, rl.Allow(teamB, now), "different team is unaffected")
	assert.True(t, rl.Allow(teamA, now.Add(16*time.Second)), "interval has elapsed")
}
