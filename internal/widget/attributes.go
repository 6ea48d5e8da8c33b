// Package widget implements the resolver, the widget kinds (prompt, text,
// countdown), and the per-game state that ties them together.
package widget

import "github.com/flumox/flumox-server/internal/timeexpr"

// Attributes is a named set of expressions, used both for a team's custom
// attributes and for a widget config's own condition attributes (visible,
// disabled, and so on).
type Attributes map[string]*timeexpr.Expr

// eval resolves attrs[name] against r, or returns def if name is absent.
// Config authors only need to write an expression for the conditions that
// differ from the natural default (e.g. a prompt with no "disabled"
// expression is simply never disabled).
func eval(attrs Attributes, name string, def timeexpr.Value, r timeexpr.Resolver) (timeexpr.Value, error) {
	expr, ok := attrs[name]
	if !ok || expr == nil {
		return def, nil
	}
	return expr.Eval(r)
}
