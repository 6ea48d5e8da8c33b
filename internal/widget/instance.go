package widget

import (
	"errors"
	"fmt"
	"time"

	"github.com/flumox/flumox-server/internal/timeexpr"
)

// Kind tags which widget variant a Config/State/View belongs to.
type Kind string

const (
	KindPrompt    Kind = "prompt"
	KindText      Kind = "text"
	KindCountdown Kind = "countdown"
)

// Config is a widget's static, author-supplied definition. Exactly one of
// the kind-specific fields is populated, selected by Kind.
type Config struct {
	Kind      Kind             `json:"kind"`
	Prompt    *PromptConfig    `json:"prompt,omitempty"`
	Text      *TextConfig      `json:"text,omitempty"`
	Countdown *CountdownConfig `json:"countdown,omitempty"`
}

// State is a widget's mutable, persisted state.
type State struct {
	Kind      Kind            `json:"kind"`
	Prompt    *PromptState    `json:"prompt,omitempty"`
	Text      *TextState      `json:"text,omitempty"`
	Countdown *CountdownState `json:"countdown,omitempty"`
}

// NewState returns the zero state appropriate for a config's kind.
func NewState(kind Kind) State {
	switch kind {
	case KindPrompt:
		return State{Kind: kind, Prompt: &PromptState{}}
	case KindText:
		return State{Kind: kind, Text: &TextState{}}
	case KindCountdown:
		return State{Kind: kind, Countdown: &CountdownState{}}
	default:
		panic(fmt.Sprintf("widget: unknown kind %q", kind))
	}
}

// View is a widget's rendered, client-facing form. Exactly one
// kind-specific field is populated, or none if the widget is not
// currently visible.
type View struct {
	Kind      Kind             `json:"kind"`
	Prompt    *PromptView      `json:"prompt,omitempty"`
	Text      *TextView        `json:"text,omitempty"`
	Countdown *CountdownView   `json:"countdown,omitempty"`
}

// Obsolete reports whether v should be sorted to the bottom of the
// rendered page: only a text widget can be obsolete.
func (v View) Obsolete() bool {
	return v.Kind == KindText && v.Text != nil && v.Text.Obsolete
}

// Instance is a widget bound to a specific ident within a game: its
// config, and its current state.
type Instance struct {
	Ident string
	Config
	State State
}

// Resolve answers a path resolution request scoped to this instance, for
// the attribute named attr (everything after "<ident>." was already
// stripped by the environment resolver).
func (in *Instance) Resolve(attr string, r timeexpr.Resolver) (timeexpr.Value, error) {
	switch in.Config.Kind {
	case KindPrompt:
		return resolvePrompt(in.Config.Prompt, in.State.Prompt, attr, r)
	case KindText:
		return resolveText(in.Config.Text, attr, r)
	case KindCountdown:
		return resolveCountdown(in.Config.Countdown, attr, r)
	default:
		return timeexpr.Value{}, timeexpr.ErrUnknownPath(in.Ident + "." + attr)
	}
}

// View renders the instance's current view as of vc's instant. The
// second return value is false if the widget isn't visible at all right
// now, in which case it is omitted from the rendered page entirely.
func (in *Instance) View(vc *ViewContext) (View, bool, error) {
	switch in.Config.Kind {
	case KindPrompt:
		v, ok, err := viewPrompt(in.Config.Prompt, in.State.Prompt, vc)
		if err != nil || !ok {
			return View{}, ok, err
		}
		return View{Kind: KindPrompt, Prompt: v}, true, nil
	case KindText:
		v, ok, err := viewText(in.Config.Text, vc)
		if err != nil || !ok {
			return View{}, ok, err
		}
		return View{Kind: KindText, Text: v}, true, nil
	case KindCountdown:
		v, ok, err := viewCountdown(in.Config.Countdown, vc)
		if err != nil || !ok {
			return View{}, ok, err
		}
		return View{Kind: KindCountdown, Countdown: v}, true, nil
	default:
		return View{}, false, fmt.Errorf("widget: unknown kind %q", in.Config.Kind)
	}
}

// ActionKind tags which action a team is submitting against a widget.
type ActionKind string

const (
	ActionAnswer ActionKind = "answer"
	ActionHint   ActionKind = "hint"
)

// Action is a team's request to affect a single widget instance.
type Action struct {
	Kind      ActionKind `json:"kind"`
	Answer    string     `json:"answer,omitempty"`
	HintIdent string     `json:"ident,omitempty"`
}

// ActionEffect is the outcome of submitting an action: a (possibly
// unchanged) new state, and an optional toast to show the team.
type ActionEffect struct {
	NewState State
	Toast    *Toast
}

// ErrActionNotSupported is returned when an action kind doesn't apply to
// the target widget's kind (e.g. submitting an answer to a countdown).
var ErrActionNotSupported = fmt.Errorf("widget: action not supported for this widget kind")

// errUnknownIdent is the sentinel wrapped by every ErrUnknownIdent, so
// callers can test for it with errors.Is regardless of which ident it
// names.
var errUnknownIdent = fmt.Errorf("widget: unknown ident")

// ErrUnknownIdent reports an action submitted against a widget ident (or,
// for a hint action, a hint ident) that doesn't exist.
func ErrUnknownIdent(ident string) error {
	return fmt.Errorf("%w %q", errUnknownIdent, ident)
}

// IsUnknownIdent reports whether err was produced by ErrUnknownIdent.
func IsUnknownIdent(err error) bool {
	return errors.Is(err, errUnknownIdent)
}

// ErrNotPossible is returned when an action is well-formed and addressed
// at a real ident, but the widget's current state doesn't allow it: the
// prompt isn't active, or the hint isn't visible or available yet. It is
// distinct from ErrActionNotSupported/ErrUnknownIdent, which are dispatch
// failures rather than a rejected-but-valid attempt.
var ErrNotPossible = fmt.Errorf("widget: action not possible in the current state")

// Submit processes action against this instance's current state, as of
// now, resolving any conditions against env.
func (in *Instance) Submit(env *Environment, now time.Time, action Action) (ActionEffect, error) {
	if in.Config.Kind != KindPrompt {
		return ActionEffect{}, ErrActionNotSupported
	}
	switch action.Kind {
	case ActionAnswer:
		return submitAnswer(env, in, now, action.Answer)
	case ActionHint:
		return takeHint(env, in, now, action.HintIdent)
	default:
		return ActionEffect{}, ErrActionNotSupported
	}
}
