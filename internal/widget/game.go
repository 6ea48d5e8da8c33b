package widget

import (
	"sort"
	"time"
)

// GameState is one team's whole view of a game: its team-level
// attributes and every widget instance, in the order they should be
// rendered to the client.
type GameState struct {
	Team     Attributes
	Order    []string
	Instance map[string]*Instance
}

// Environment exposes the game state as a timeexpr resolution target.
func (g *GameState) Environment() *Environment {
	return &Environment{Team: g.Team, Instances: g.Instance}
}

// InstanceView pairs a rendered widget view with the ident it was
// rendered from.
type InstanceView struct {
	Ident string
	View  View
}

// View renders every visible widget instance, in order, as of now. It
// returns the rendered instances plus the earliest instant at which any
// of them could change (nil if nothing in the render depends on time at
// all).
func (g *GameState) View(now time.Time) ([]InstanceView, *time.Time, error) {
	env := g.Environment()
	vc := NewViewContext(env, now)

	out := make([]InstanceView, 0, len(g.Order))
	for _, ident := range g.Order {
		inst := g.Instance[ident]
		view, ok, err := inst.View(vc)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			continue
		}
		out = append(out, InstanceView{Ident: ident, View: view})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return !out[i].View.Obsolete() && out[j].View.Obsolete()
	})
	return out, vc.Time.ValidUntil(), nil
}

// Submit processes an action against the instance named ident, returning
// the resulting effect without mutating g: callers are responsible for
// persisting ActionEffect.NewState and applying it to g on success.
func (g *GameState) Submit(ident string, now time.Time, action Action) (ActionEffect, error) {
	inst, ok := g.Instance[ident]
	if !ok {
		return ActionEffect{}, ErrUnknownIdent(ident)
	}
	return inst.Submit(g.Environment(), now, action)
}
