package widget

import (
	"strings"
	"time"

	"github.com/flumox/flumox-server/internal/timeexpr"
)

// HintConfig is one hint attached to a prompt, addressed by its own Ident
// (distinct from the widget's ident): a team takes a specific hint by
// name, not by position. Available gates whether the hint can be taken
// yet; Visible gates whether its existence (but not necessarily its
// content) is shown at all.
type HintConfig struct {
	Ident      string         `json:"ident"`
	Name       string         `json:"name"`
	Content    []string       `json:"content"`
	Available  *timeexpr.Expr `json:"available,omitempty"`
	Visible    *timeexpr.Expr `json:"visible,omitempty"`
	TakeButton string         `json:"take_button,omitempty"`
	// OnHintTaken, if set, replaces the default "hint taken" toast
	// message when this specific hint is taken.
	OnHintTaken string `json:"on_hint_taken,omitempty"`
}

// PromptConfig is the static definition of a prompt widget: a question,
// its accepted solutions, and any hints.
type PromptConfig struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
	// Solutions is tried in order; the first one whose normalized form
	// matches the submitted answer wins.
	Solutions []Solution `json:"solutions"`
	// SolutionExclusionGroup, when non-empty, names a set of prompts that
	// may not share an answer: a correct answer is rejected when another
	// prompt in the same group is already solved with the same canonical
	// text.
	SolutionExclusionGroup string     `json:"solution_exclusion_group,omitempty"`
	Attributes             Attributes `json:"attributes,omitempty"`
	Hints                  []HintConfig `json:"hints,omitempty"`
	// OnSolutionCorrect/OnSolutionIncorrect, if set, replace the default
	// toast messages for a correct/incorrect submission.
	OnSolutionCorrect   string `json:"on_solution_correct,omitempty"`
	OnSolutionIncorrect string `json:"on_solution_incorrect,omitempty"`
}

// findSolution returns the first configured solution whose normalized
// form matches answer.
func findSolution(solutions []Solution, answer string) (Solution, bool) {
	for _, s := range solutions {
		if s.Matches(answer) {
			return s, true
		}
	}
	return Solution{}, false
}

// PromptState is a prompt's mutable, persisted state. HintsTaken is
// grow-only and keyed by hint ident, mirroring the config-side addressing.
// CanonicalText is the normalized form of the accepted answer, used both
// for display and to compare against a solution_exclusion_group.
type PromptState struct {
	Solved        bool                 `json:"solved"`
	SolvedAt      time.Time            `json:"solved_at,omitempty"`
	CanonicalText string               `json:"canonical_text,omitempty"`
	HintsTaken    map[string]time.Time `json:"hints_taken,omitempty"`
}

func (s *PromptState) hintTakenAt(ident string) time.Time {
	return s.HintsTaken[ident]
}

// PromptTimeKind tags whether a prompt is still being solved or already
// solved, for the client's display of elapsed/solved time.
type PromptTimeKind string

const (
	PromptSolving PromptTimeKind = "solving"
	PromptSolved  PromptTimeKind = "solved"
)

// PromptTime is the rendered time summary for a prompt: absent entirely
// unless visible resolved to a Since instant. Solving carries the
// instant the prompt became visible; Solved carries the duration
// between that instant and when it was solved.
type PromptTime struct {
	Kind  PromptTimeKind `json:"kind"`
	Since *time.Time     `json:"since,omitempty"`
	After *time.Duration `json:"after,omitempty"`
}

// HintState tags which of the four shapes a rendered hint takes: unknown
// (its availability resolves to Never), not available until a future
// time, available to take now, or already taken. A hint that is not
// visible is left out of the rendered view entirely.
type HintState string

const (
	HintUnknown   HintState = "unknown"
	HintFuture    HintState = "future"
	HintAvailable HintState = "available"
	HintTaken     HintState = "taken"
)

// HintView is the rendered form of one hint.
type HintView struct {
	Ident   string     `json:"ident"`
	Name    string     `json:"name"`
	State   HintState  `json:"state"`
	Time    *time.Time `json:"time,omitempty"`
	Button  string     `json:"button,omitempty"`
	Content []string   `json:"content,omitempty"`
}

// PromptView is the rendered form of a prompt widget.
type PromptView struct {
	Heading  string         `json:"heading"`
	Body     string         `json:"body"`
	Active   bool           `json:"active"`
	Disabled bool           `json:"disabled"`
	Solution string         `json:"solution,omitempty"`
	Time     *PromptTime    `json:"time,omitempty"`
	Hints    []HintView     `json:"hints"`
}

func resolvePrompt(cfg *PromptConfig, st *PromptState, attr string, r timeexpr.Resolver) (timeexpr.Value, error) {
	switch attr {
	case "solved":
		if st.Solved {
			return timeexpr.Since(st.SolvedAt), nil
		}
		return timeexpr.Never(), nil
	case "visible":
		return eval(cfg.Attributes, "visible", timeexpr.Always(), r)
	case "disabled":
		return eval(cfg.Attributes, "disabled", timeexpr.Never(), r)
	}

	ident, sub, ok := parseHintAttr(attr)
	if !ok {
		return timeexpr.Value{}, timeexpr.ErrUnknownPath(attr)
	}
	hint, ok := findHint(cfg, ident)
	if !ok {
		return timeexpr.Value{}, timeexpr.ErrUnknownPath(attr)
	}
	switch sub {
	case "available":
		return eval(Attributes{"available": hint.Available}, "available", timeexpr.Always(), r)
	case "visible":
		return eval(Attributes{"visible": hint.Visible}, "visible", timeexpr.Always(), r)
	case "taken":
		if at := st.hintTakenAt(ident); !at.IsZero() {
			return timeexpr.Since(at), nil
		}
		return timeexpr.Never(), nil
	default:
		return timeexpr.Value{}, timeexpr.ErrUnknownPath(attr)
	}
}

// parseHintAttr splits "hint.<ident>.<sub>" into the hint's ident and the
// sub-attribute being resolved.
func parseHintAttr(attr string) (ident, sub string, ok bool) {
	parts := strings.SplitN(attr, ".", 3)
	if len(parts) != 3 || parts[0] != "hint" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func findHint(cfg *PromptConfig, ident string) (HintConfig, bool) {
	for _, h := range cfg.Hints {
		if h.Ident == ident {
			return h, true
		}
	}
	return HintConfig{}, false
}

func isActivePrompt(cfg *PromptConfig, st *PromptState, vc *ViewContext) (bool, error) {
	visibleVal, err := resolvePrompt(cfg, st, "visible", vc.Resolver())
	if err != nil {
		return false, err
	}
	disabledVal, err := resolvePrompt(cfg, st, "disabled", vc.Resolver())
	if err != nil {
		return false, err
	}
	solvedVal, err := resolvePrompt(cfg, st, "solved", vc.Resolver())
	if err != nil {
		return false, err
	}
	return vc.Time.After(visibleVal) && !vc.Time.After(disabledVal) && !vc.Time.After(solvedVal), nil
}

func viewPrompt(cfg *PromptConfig, st *PromptState, vc *ViewContext) (*PromptView, bool, error) {
	visibleVal, err := resolvePrompt(cfg, st, "visible", vc.Resolver())
	if err != nil {
		return nil, false, err
	}
	if !vc.Time.After(visibleVal) {
		return nil, false, nil
	}

	active, err := isActivePrompt(cfg, st, vc)
	if err != nil {
		return nil, false, err
	}
	disabledVal, err := resolvePrompt(cfg, st, "disabled", vc.Resolver())
	if err != nil {
		return nil, false, err
	}

	view := &PromptView{
		Heading:  cfg.Heading,
		Body:     cfg.Body,
		Active:   active,
		Disabled: st.Solved || vc.Time.After(disabledVal),
	}
	if st.Solved {
		view.Solution = st.CanonicalText
	}
	switch {
	case visibleVal.Kind != timeexpr.KindSince:
		// Always/Never: no Since instant to report a summary against.
	case !st.Solved:
		since := visibleVal.At
		view.Time = &PromptTime{Kind: PromptSolving, Since: &since}
	default:
		after := st.SolvedAt.Sub(visibleVal.At)
		view.Time = &PromptTime{Kind: PromptSolved, After: &after}
	}

	for _, hint := range cfg.Hints {
		taken := !st.hintTakenAt(hint.Ident).IsZero()

		if !st.Solved && !taken {
			visV, err := resolvePrompt(cfg, st, hintAttr(hint.Ident, "visible"), vc.Resolver())
			if err != nil {
				return nil, false, err
			}
			if !vc.Time.After(visV) {
				continue
			}
		}

		if st.Solved || taken {
			view.Hints = append(view.Hints, HintView{
				Ident: hint.Ident, Name: hint.Name, State: HintTaken, Content: hint.Content,
			})
			continue
		}

		availV, err := resolvePrompt(cfg, st, hintAttr(hint.Ident, "available"), vc.Resolver())
		if err != nil {
			return nil, false, err
		}
		switch {
		case availV.Kind == timeexpr.KindNever:
			view.Hints = append(view.Hints, HintView{Ident: hint.Ident, Name: hint.Name, State: HintUnknown})
		case availV.Kind == timeexpr.KindSince && !vc.Time.After(availV):
			at := availV.At
			view.Hints = append(view.Hints, HintView{Ident: hint.Ident, Name: hint.Name, State: HintFuture, Time: &at})
		default:
			view.Hints = append(view.Hints, HintView{Ident: hint.Ident, Name: hint.Name, State: HintAvailable, Button: hint.TakeButton})
		}
	}
	return view, true, nil
}

func hintAttr(ident, sub string) string {
	return "hint." + ident + "." + sub
}

// submitAnswer handles an Action{Kind: ActionAnswer} for a prompt
// instance: it is evaluated against the live environment at the instant
// the action is processed, inside the same transaction that will persist
// the resulting state.
func submitAnswer(env *Environment, self *Instance, now time.Time, answer string) (ActionEffect, error) {
	cfg := self.Config.Prompt
	st := self.State.Prompt

	vc := NewViewContext(env, now)
	active, err := isActivePrompt(cfg, st, vc)
	if err != nil {
		return ActionEffect{}, err
	}
	if !active {
		return ActionEffect{}, ErrNotPossible
	}

	sol, ok := findSolution(cfg.Solutions, answer)
	if !ok {
		return ActionEffect{Toast: &Toast{
			Message: ToastMessage{Kind: ToastSolutionIncorrect}.Override(cfg.OnSolutionIncorrect),
			Class:   ToastDanger,
		}}, nil
	}
	canonical := sol.Canonical(answer)

	if cfg.SolutionExclusionGroup != "" {
		for ident, other := range env.Instances {
			if ident == self.Ident || other.Config.Kind != KindPrompt {
				continue
			}
			otherCfg, otherState := other.Config.Prompt, other.State.Prompt
			if otherCfg.SolutionExclusionGroup != cfg.SolutionExclusionGroup || !otherState.Solved {
				continue
			}
			if otherState.CanonicalText == canonical {
				return ActionEffect{Toast: &Toast{
					Message: ToastMessage{Kind: ToastSolutionIncorrect}.Override(cfg.OnSolutionIncorrect),
					Class:   ToastDanger,
				}}, nil
			}
		}
	}

	next := *st
	next.Solved = true
	next.SolvedAt = now
	next.CanonicalText = canonical
	return ActionEffect{
		NewState: State{Kind: KindPrompt, Prompt: &next},
		Toast: &Toast{
			Message: ToastMessage{Kind: ToastSolutionCorrect}.Override(cfg.OnSolutionCorrect),
			Class:   ToastSuccess,
		},
	}, nil
}

// takeHint handles an Action{Kind: ActionHint} for a prompt instance,
// addressing the hint by its own ident (distinct from the widget ident).
func takeHint(env *Environment, self *Instance, now time.Time, ident string) (ActionEffect, error) {
	cfg := self.Config.Prompt
	st := self.State.Prompt

	vc := NewViewContext(env, now)
	active, err := isActivePrompt(cfg, st, vc)
	if err != nil {
		return ActionEffect{}, err
	}
	if !active {
		return ActionEffect{}, ErrNotPossible
	}

	hint, ok := findHint(cfg, ident)
	if !ok {
		return ActionEffect{}, ErrUnknownIdent(ident)
	}

	visV, err := resolvePrompt(cfg, st, hintAttr(ident, "visible"), vc.Resolver())
	if err != nil {
		return ActionEffect{}, err
	}
	if !vc.Time.After(visV) {
		return ActionEffect{}, ErrNotPossible
	}
	takenV, err := resolvePrompt(cfg, st, hintAttr(ident, "taken"), vc.Resolver())
	if err != nil {
		return ActionEffect{}, err
	}
	if vc.Time.After(takenV) {
		return ActionEffect{}, ErrNotPossible
	}
	availV, err := resolvePrompt(cfg, st, hintAttr(ident, "available"), vc.Resolver())
	if err != nil {
		return ActionEffect{}, err
	}
	if !vc.Time.After(availV) {
		return ActionEffect{}, ErrNotPossible
	}

	taken := make(map[string]time.Time, len(st.HintsTaken)+1)
	for k, v := range st.HintsTaken {
		taken[k] = v
	}
	taken[ident] = now

	next := *st
	next.HintsTaken = taken
	return ActionEffect{
		NewState: State{Kind: KindPrompt, Prompt: &next},
		Toast: &Toast{
			Message: ToastMessage{Kind: ToastHintTaken}.Override(hint.OnHintTaken),
			Class:   ToastSuccess,
		},
	}, nil
}
