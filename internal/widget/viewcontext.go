package widget

import (
	"time"

	"github.com/flumox/flumox-server/internal/timeexpr"
)

// TimeTracker evaluates conditions at a fixed instant while recording the
// earliest future instant at which any of them could change. The view
// renderer uses this to compute a valid_until deadline for the whole
// rendered page: the moment any observed Since(t) threshold is crossed,
// the client's view may be stale and must be re-rendered.
type TimeTracker struct {
	current    time.Time
	nextChange time.Time
}

// NewTimeTracker starts tracking relative to now.
func NewTimeTracker(now time.Time) *TimeTracker {
	return &TimeTracker{current: now}
}

// After reports whether v holds at the tracked instant, and if v has not
// yet happened, records it as a candidate for the next change.
func (t *TimeTracker) After(v timeexpr.Value) bool {
	holds := v.Holds(t.current)
	if v.Kind == timeexpr.KindSince && v.At.After(t.current) {
		if t.nextChange.IsZero() || v.At.Before(t.nextChange) {
			t.nextChange = v.At
		}
	}
	return holds
}

// ValidUntil returns the earliest instant recorded by After, or nil if no
// tracked condition will ever change.
func (t *TimeTracker) ValidUntil() *time.Time {
	if t.nextChange.IsZero() {
		return nil
	}
	at := t.nextChange
	return &at
}

// ViewContext bundles the clock used to render a view with the
// environment the view's conditions resolve against.
type ViewContext struct {
	Time *TimeTracker
	Env  *Environment
	r    timeexpr.Resolver
}

// NewViewContext builds a ViewContext for rendering at now, with a fresh
// resolution cache shared across every widget rendered from it.
func NewViewContext(env *Environment, now time.Time) *ViewContext {
	cache := NewCache()
	return &ViewContext{
		Time: NewTimeTracker(now),
		Env:  env,
		r:    NewResolver(env, cache),
	}
}

// Resolver returns the resolver this view context renders with.
func (vc *ViewContext) Resolver() timeexpr.Resolver { return vc.r }
