package widget

import "github.com/flumox/flumox-server/internal/timeexpr"

// ParagraphKind tags whether a paragraph is always shown or conditional.
type ParagraphKind string

const (
	ParagraphSimple      ParagraphKind = "simple"
	ParagraphConditional ParagraphKind = "conditional"
)

// Paragraph is one block of a text widget's body. A conditional
// paragraph is shown once Show holds and hidden once Hide holds; Hide
// takes priority so a paragraph can be revealed and later retracted.
type Paragraph struct {
	Kind ParagraphKind    `json:"kind"`
	Text string           `json:"text"`
	Show *timeexpr.Expr   `json:"show,omitempty"`
	Hide *timeexpr.Expr   `json:"hide,omitempty"`
}

func (p Paragraph) visible(vc *ViewContext) (bool, error) {
	if p.Kind == ParagraphSimple {
		return true, nil
	}
	showVal, err := p.Show.Eval(vc.Resolver())
	if err != nil {
		return false, err
	}
	shows := vc.Time.After(showVal)

	hideVal, err := p.Hide.Eval(vc.Resolver())
	if err != nil {
		return false, err
	}
	hides := vc.Time.After(hideVal)

	return shows && !hides, nil
}

// TextConfig is the static definition of a text widget: a heading and a
// sequence of paragraphs, some of which only appear once a condition
// holds.
type TextConfig struct {
	Heading    string         `json:"heading"`
	Paragraphs []Paragraph    `json:"paragraphs"`
	Visible    *timeexpr.Expr `json:"visible,omitempty"`
	// Obsolete marks a text widget as stale once it holds: it stays
	// visible but the renderer sorts it to the bottom of the page.
	Obsolete *timeexpr.Expr `json:"obsolete,omitempty"`
}

// TextState is empty: a text widget has no mutable state of its own,
// only conditions evaluated against the rest of the game.
type TextState struct{}

// TextView is the rendered form of a text widget sent to clients.
type TextView struct {
	Heading    string   `json:"heading"`
	Paragraphs []string `json:"paragraphs"`
	Obsolete   bool     `json:"obsolete,omitempty"`
}

func resolveText(cfg *TextConfig, attr string, r timeexpr.Resolver) (timeexpr.Value, error) {
	switch attr {
	case "visible":
		return eval(Attributes{"visible": cfg.Visible}, "visible", timeexpr.Always(), r)
	case "obsolete":
		return eval(Attributes{"obsolete": cfg.Obsolete}, "obsolete", timeexpr.Never(), r)
	default:
		return timeexpr.Value{}, timeexpr.ErrUnknownPath(attr)
	}
}

func viewText(cfg *TextConfig, vc *ViewContext) (*TextView, bool, error) {
	visibleVal, err := resolveText(cfg, "visible", vc.Resolver())
	if err != nil {
		return nil, false, err
	}
	if !vc.Time.After(visibleVal) {
		return nil, false, nil
	}
	obsoleteVal, err := resolveText(cfg, "obsolete", vc.Resolver())
	if err != nil {
		return nil, false, err
	}

	view := &TextView{Heading: cfg.Heading, Obsolete: vc.Time.After(obsoleteVal)}
	for _, p := range cfg.Paragraphs {
		ok, err := p.visible(vc)
		if err != nil {
			return nil, false, err
		}
		if ok {
			view.Paragraphs = append(view.Paragraphs, p.Text)
		}
	}
	return view, true, nil
}
