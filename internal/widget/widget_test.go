package widget

import (
	"testing"
	"time"

	"github.com/flumox/flumox-server/internal/timeexpr"
	"github.com/stretchr/testify/require"
)

func mustExpr(t *testing.T, src string) *timeexpr.Expr {
	t.Helper()
	e, err := timeexpr.Parse(src)
	require.NoError(t, err)
	return e
}

func newTestGame(t *testing.T) *GameState {
	solved := mustExpr(t, "team.unlocked")
	g := &GameState{
		Team: Attributes{
			"unlocked": mustExpr(t, "2024-01-01 00:00 +0"),
		},
		Order: []string{"intro", "riddle"},
		Instance: map[string]*Instance{
			"intro": {
				Ident: "intro",
				Config: Config{Kind: KindText, Text: &TextConfig{
					Heading: "Welcome",
					Paragraphs: []Paragraph{
						{Kind: ParagraphSimple, Text: "hello"},
						{
							Kind: ParagraphConditional,
							Text: "riddle solved",
							Show: mustExpr(t, "riddle.solved"),
							Hide: mustExpr(t, "never"),
						},
					},
				}},
				State: State{Kind: KindText, Text: &TextState{}},
			},
			"riddle": {
				Ident: "riddle",
				Config: Config{Kind: KindPrompt, Prompt: &PromptConfig{
					Heading:   "What has keys but no locks?",
					Body:      "...",
					Solutions: []Solution{{Kind: SolutionAlphanumeric, Alphanumeric: "a keyboard"}},
					Attributes: Attributes{
						"visible": solved,
					},
					Hints: []HintConfig{{Ident: "first", Name: "a hint", Content: []string{"it types"}}},
				}},
				State: State{Kind: KindPrompt, Prompt: &PromptState{}},
			},
		},
	}
	return g
}

func TestGameViewOrderAndVisibility(t *testing.T) {
	g := newTestGame(t)

	before := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	views, validUntil, err := g.View(before)
	require.NoError(t, err)
	require.Len(t, views, 1, "riddle not visible yet, only intro shows")
	require.Equal(t, "intro", views[0].Ident)
	require.NotNil(t, validUntil)

	after := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	views, validUntil, err = g.View(after)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "riddle", views[1].Ident)
	require.Nil(t, validUntil, "nothing left to change once unlocked")
}

func TestSubmitAnswerCorrectAndIncorrect(t *testing.T) {
	g := newTestGame(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	effect, err := g.Submit("riddle", now, Action{Kind: ActionAnswer, Answer: "wrong"})
	require.NoError(t, err)
	require.NotNil(t, effect.Toast)
	require.Equal(t, ToastDanger, effect.Toast.Class)
	require.False(t, effect.NewState.Prompt != nil && effect.NewState.Prompt.Solved)

	effect, err = g.Submit("riddle", now, Action{Kind: ActionAnswer, Answer: "A Keyboard!"})
	require.NoError(t, err)
	require.NotNil(t, effect.Toast)
	require.Equal(t, ToastSuccess, effect.Toast.Class)
	require.True(t, effect.NewState.Prompt.Solved)
	g.Instance["riddle"].State = effect.NewState

	views, _, err := g.View(now)
	require.NoError(t, err)
	require.Len(t, views, 2, "solved prompt stays visible, intro's conditional paragraph appears")
	require.Contains(t, views[0].View.Text.Paragraphs, "riddle solved")
}

func TestSubmitAnswerNotActive(t *testing.T) {
	g := newTestGame(t)
	before := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := g.Submit("riddle", before, Action{Kind: ActionAnswer, Answer: "a keyboard"})
	require.ErrorIs(t, err, ErrNotPossible)
}

func TestTakeHint(t *testing.T) {
	g := newTestGame(t)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	effect, err := g.Submit("riddle", now, Action{Kind: ActionHint, HintIdent: "first"})
	require.NoError(t, err)
	require.NotNil(t, effect.Toast)
	require.Equal(t, ToastSuccess, effect.Toast.Class)
	require.True(t, effect.NewState.Prompt.HintsTaken["first"].Equal(now))

	g.Instance["riddle"].State = effect.NewState
	_, err = g.Submit("riddle", now, Action{Kind: ActionHint, HintIdent: "unknown"})
	require.True(t, IsUnknownIdent(err))
}

func TestSolutionExclusionGroup(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := &GameState{
		Order: []string{"a", "b"},
		Instance: map[string]*Instance{
			"a": {
				Ident: "a",
				Config: Config{Kind: KindPrompt, Prompt: &PromptConfig{
					Solutions:              []Solution{{Kind: SolutionAlphanumeric, Alphanumeric: "x"}},
					SolutionExclusionGroup: "group",
				}},
				State: State{Kind: KindPrompt, Prompt: &PromptState{Solved: true, SolvedAt: now, CanonicalText: "Y"}},
			},
			"b": {
				Ident: "b",
				Config: Config{Kind: KindPrompt, Prompt: &PromptConfig{
					Solutions:              []Solution{{Kind: SolutionAlphanumeric, Alphanumeric: "y"}},
					SolutionExclusionGroup: "group",
				}},
				State: State{Kind: KindPrompt, Prompt: &PromptState{}},
			},
		},
	}

	effect, err := g.Submit("b", now, Action{Kind: ActionAnswer, Answer: "y"})
	require.NoError(t, err)
	require.Equal(t, ToastDanger, effect.Toast.Class)
	require.False(t, effect.NewState.Prompt != nil && effect.NewState.Prompt.Solved)
}

func TestCircularDependencyDetected(t *testing.T) {
	g := &GameState{
		Order: []string{"a", "b"},
		Instance: map[string]*Instance{
			"a": {
				Ident: "a",
				Config: Config{Kind: KindText, Text: &TextConfig{
					Visible: mustExpr(t, "b.visible"),
				}},
				State: State{Kind: KindText, Text: &TextState{}},
			},
			"b": {
				Ident: "b",
				Config: Config{Kind: KindText, Text: &TextConfig{
					Visible: mustExpr(t, "a.visible"),
				}},
				State: State{Kind: KindText, Text: &TextState{}},
			},
		},
	}

	_, _, err := g.View(time.Now())
	require.Error(t, err)
}

func TestSolutionMatching(t *testing.T) {
	s := Solution{Kind: SolutionAlphanumeric, Alphanumeric: "Château-Neuf"}
	require.True(t, s.Matches("CHATEAUNEUF"))
	require.True(t, s.Matches("chateau neuf"))
	require.False(t, s.Matches("chateau neufs"))

	n := Solution{Kind: SolutionNumber, Number: 42}
	require.True(t, n.Matches("42"))
	require.True(t, n.Matches(" 42 "))
	require.True(t, n.Matches("+42"))
	require.False(t, n.Matches("43"))
	require.False(t, n.Matches("1a2"))
	require.False(t, n.Matches("12-34"))
}
