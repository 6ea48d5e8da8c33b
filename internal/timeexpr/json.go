package timeexpr

import (
	"encoding/json"
	"fmt"
	"time"
)

// MarshalJSON serializes the expression as its source text: the form
// config authors write and Parse reads back.
func (e *Expr) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.source())
}

// UnmarshalJSON parses the expression from its source text.
func (e *Expr) UnmarshalJSON(data []byte) error {
	var src string
	if err := json.Unmarshal(data, &src); err != nil {
		return err
	}
	parsed, err := Parse(src)
	if err != nil {
		return err
	}
	*e = *parsed
	return nil
}

// source returns the text Parse produced this Expr from, or a freshly
// rendered equivalent for an Expr built programmatically via the
// constructor functions. Literal instants are rendered in UTC to whole
// seconds; any sub-second part of a programmatic literal is dropped.
func (e *Expr) source() string {
	if e.src != "" {
		return e.src
	}
	return e.render()
}

func (e *Expr) render() string {
	switch e.kind {
	case exprLiteral:
		return renderValue(e.lit)
	case exprField:
		return e.path
	case exprAnd:
		return "(" + e.a.render() + ") & (" + e.b.render() + ")"
	case exprOr:
		return "(" + e.a.render() + ") | (" + e.b.render() + ")"
	case exprAdd:
		return "(" + e.a.render() + ") + " + renderDuration(e.dur)
	default:
		panic("timeexpr: unreachable expr kind")
	}
}

func renderValue(v Value) string {
	switch v.Kind {
	case KindAlways:
		return "always"
	case KindNever:
		return "never"
	default:
		t := v.At.UTC()
		return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d +0", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	}
}

func renderDuration(d time.Duration) string {
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	d -= seconds * time.Second
	ms := d / time.Millisecond

	out := ""
	if days > 0 {
		out += fmt.Sprintf("%dd ", days)
	}
	if hours > 0 {
		out += fmt.Sprintf("%dh ", hours)
	}
	if minutes > 0 {
		out += fmt.Sprintf("%dm ", minutes)
	}
	if seconds > 0 {
		out += fmt.Sprintf("%ds ", seconds)
	}
	if ms > 0 || out == "" {
		out += fmt.Sprintf("%dms ", ms)
	}
	return out[:len(out)-1]
}
