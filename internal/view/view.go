// Package view renders a team's game state into the payload sent to
// clients, and compares two renders so a sync session can skip pushing a
// render that did not change. Renders are compared whole: there is no
// per-widget delta, and a changed render is sent in full.
package view

import (
	"time"

	"github.com/flumox/flumox-server/internal/widget"
	"github.com/google/uuid"
)

// WidgetView is one rendered widget instance, addressed by the stable id
// assigned to its ident when the game was loaded (not the ident itself,
// which is only meaningful to game authors).
type WidgetView struct {
	ID   uuid.UUID  `json:"id"`
	View widget.View `json:"view"`
}

// Render is the full payload rendered for a team at one instant.
type Render struct {
	Widgets    []WidgetView `json:"widgets"`
	ValidUntil *time.Time   `json:"valid_until,omitempty"`
}

// IdentID maps a widget ident to the stable id assigned to it.
type IdentID map[string]uuid.UUID

// Build renders game at now, translating idents to their stable widget
// ids via ids. A widget whose ident has no entry in ids is skipped: this
// can only happen for a widget added to the game definition after ids was
// loaded from storage, which storage.LoadState is responsible for
// preventing by assigning ids for every widget row up front.
func Build(game *widget.GameState, ids IdentID, now time.Time) (Render, error) {
	views, validUntil, err := game.View(now)
	if err != nil {
		return Render{}, err
	}

	out := Render{ValidUntil: validUntil}
	for _, v := range views {
		id, ok := ids[v.Ident]
		if !ok {
			continue
		}
		out.Widgets = append(out.Widgets, WidgetView{ID: id, View: v.View})
	}
	return out, nil
}

// Equal reports whether two renders carry the same widget views, ignoring
// ValidUntil: a sync session uses this to decide whether a re-render
// actually changed anything worth pushing to the client.
func Equal(a, b Render) bool {
	if len(a.Widgets) != len(b.Widgets) {
		return false
	}
	for i := range a.Widgets {
		if a.Widgets[i].ID != b.Widgets[i].ID {
			return false
		}
		if !viewsEqual(a.Widgets[i].View, b.Widgets[i].View) {
			return false
		}
	}
	return true
}

// viewsEqual compares two widget views for equality. Views are plain
// data (no function or channel fields), so a field-by-field compare
// reduces to comparing the populated kind-specific pointer's pointee.
func viewsEqual(a, b widget.View) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case widget.KindPrompt:
		return promptViewEqual(a.Prompt, b.Prompt)
	case widget.KindText:
		return textViewEqual(a.Text, b.Text)
	case widget.KindCountdown:
		return countdownViewEqual(a.Countdown, b.Countdown)
	default:
		return true
	}
}

func promptViewEqual(a, b *widget.PromptView) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Heading != b.Heading || a.Body != b.Body || a.Active != b.Active || a.Disabled != b.Disabled ||
		a.Solution != b.Solution {
		return false
	}
	if !promptTimeEqual(a.Time, b.Time) {
		return false
	}
	if len(a.Hints) != len(b.Hints) {
		return false
	}
	for i := range a.Hints {
		ha, hb := a.Hints[i], b.Hints[i]
		if ha.Ident != hb.Ident || ha.Name != hb.Name || ha.State != hb.State || ha.Button != hb.Button {
			return false
		}
		if !timePtrEqual(ha.Time, hb.Time) {
			return false
		}
		if len(ha.Content) != len(hb.Content) {
			return false
		}
		for j := range ha.Content {
			if ha.Content[j] != hb.Content[j] {
				return false
			}
		}
	}
	return true
}

func promptTimeEqual(a, b *widget.PromptTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	if !timePtrEqual(a.Since, b.Since) {
		return false
	}
	switch {
	case a.After == nil || b.After == nil:
		return a.After == b.After
	default:
		return *a.After == *b.After
	}
}

func textViewEqual(a, b *widget.TextView) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Heading != b.Heading || a.Obsolete != b.Obsolete || len(a.Paragraphs) != len(b.Paragraphs) {
		return false
	}
	for i := range a.Paragraphs {
		if a.Paragraphs[i] != b.Paragraphs[i] {
			return false
		}
	}
	return true
}

func countdownViewEqual(a, b *widget.CountdownView) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Details != b.Details || a.ValueKind != b.ValueKind {
		return false
	}
	if !timePtrEqual(a.At, b.At) {
		return false
	}
	return strPtrEqual(a.DoneText, b.DoneText)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
