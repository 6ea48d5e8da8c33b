package action

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RateLimiter throttles how often a single team may successfully submit
// an action, independent of the retry loop above it (which only bounds
// how long one submission may take). Disabled by default: the original
// service places no additional throttle in front of action submission,
// so a nil *RateLimiter (or one built with NewRateLimiter(0)) always
// allows.
type RateLimiter struct {
	interval time.Duration

	mu   sync.Mutex
	last map[uuid.UUID]time.Time
}

// NewRateLimiter returns a limiter that allows at most one action per
// team every interval. An interval of zero disables throttling.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval, last: map[uuid.UUID]time.Time{}}
}

// Allow reports whether teamID may submit an action right now, recording
// the attempt if so.
func (rl *RateLimiter) Allow(teamID uuid.UUID, now time.Time) bool {
	if rl == nil || rl.interval <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if last, ok := rl.last[teamID]; ok && now.Sub(last) < rl.interval {
		return false
	}
	rl.last[teamID] = now
	return true
}
