package widget

import (
	"time"

	"github.com/flumox/flumox-server/internal/timeexpr"
)

// CountdownConfig is the static definition of a countdown widget: a
// target time expressed as a condition (the countdown is "done" once the
// condition holds) plus the text to show once it's done.
type CountdownConfig struct {
	Name     string         `json:"name"`
	Details  string         `json:"details"`
	Time     *timeexpr.Expr `json:"time"`
	Visible  *timeexpr.Expr `json:"visible,omitempty"`
	DoneText string         `json:"done_text"`
}

// CountdownState is empty: like text, a countdown has no state of its
// own beyond the configured target condition.
type CountdownState struct{}

// CountdownValueKind tags which shape a countdown's current value is in.
type CountdownValueKind string

const (
	// CountdownUnknown means the target condition resolved to Never: there
	// is no time to count down to.
	CountdownUnknown CountdownValueKind = "unknown"
	// CountdownTime means the countdown is still running, counting down to At.
	CountdownTime CountdownValueKind = "time"
	// CountdownDone means the target condition has already been reached.
	CountdownDone CountdownValueKind = "done"
)

// CountdownView is the rendered form of a countdown widget.
type CountdownView struct {
	Name      string             `json:"name"`
	Details   string             `json:"details"`
	ValueKind CountdownValueKind `json:"value_kind"`
	At        *time.Time         `json:"at,omitempty"`
	DoneText  *string            `json:"done_text,omitempty"`
}

func resolveCountdown(cfg *CountdownConfig, attr string, r timeexpr.Resolver) (timeexpr.Value, error) {
	switch attr {
	case "visible":
		return eval(Attributes{"visible": cfg.Visible}, "visible", timeexpr.Always(), r)
	case "done":
		return cfg.Time.Eval(r)
	default:
		return timeexpr.Value{}, timeexpr.ErrUnknownPath(attr)
	}
}

func viewCountdown(cfg *CountdownConfig, vc *ViewContext) (*CountdownView, bool, error) {
	visibleVal, err := resolveCountdown(cfg, "visible", vc.Resolver())
	if err != nil {
		return nil, false, err
	}
	if !vc.Time.After(visibleVal) {
		return nil, false, nil
	}

	doneVal, err := resolveCountdown(cfg, "done", vc.Resolver())
	if err != nil {
		return nil, false, err
	}

	view := &CountdownView{Name: cfg.Name, Details: cfg.Details}
	switch doneVal.Kind {
	case timeexpr.KindNever:
		view.ValueKind = CountdownUnknown
	case timeexpr.KindAlways:
		view.ValueKind = CountdownDone
		text := cfg.DoneText
		view.DoneText = &text
	case timeexpr.KindSince:
		if vc.Time.After(doneVal) {
			view.ValueKind = CountdownDone
			text := cfg.DoneText
			view.DoneText = &text
		} else {
			view.ValueKind = CountdownTime
			at := doneVal.At
			view.At = &at
		}
	}
	return view, true, nil
}
