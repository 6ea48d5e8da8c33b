package widget

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SolutionKind tags which matching strategy a prompt's solution uses.
type SolutionKind string

const (
	// SolutionAlphanumeric matches case- and accent-insensitively, ignoring
	// punctuation and whitespace: "Château-Neuf" matches "CHATEAUNEUF".
	SolutionAlphanumeric SolutionKind = "alphanumeric"
	// SolutionNumber parses the input as a signed integer and compares it
	// numerically: "42" and "  42 " match 42, but "12-34" or "1a2" fail to
	// parse at all rather than being coerced into some other number.
	SolutionNumber SolutionKind = "number"
)

// Solution is a prompt's stored correct answer.
type Solution struct {
	Kind         SolutionKind `json:"kind"`
	Alphanumeric string       `json:"alphanumeric,omitempty"`
	Number       int32        `json:"number,omitempty"`
}

// Matches reports whether input is an accepted answer for s.
func (s Solution) Matches(input string) bool {
	switch s.Kind {
	case SolutionAlphanumeric:
		return fuzzyEqual(s.Alphanumeric, input)
	case SolutionNumber:
		n, ok := numericValue(input)
		return ok && n == s.Number
	default:
		return false
	}
}

// Canonical returns the normalized form of an input already known to
// match s, suitable for storing as the solved answer's canonical text
// and for comparing across a solution_exclusion_group.
func (s Solution) Canonical(input string) string {
	switch s.Kind {
	case SolutionNumber:
		return strconv.FormatInt(int64(s.Number), 10)
	default:
		return alphanumericFold(input)
	}
}

// fuzzyEqual compares two strings ignoring case, accents, and anything
// that isn't a letter or digit. Both sides run through NFKD so that
// composed and decomposed accented forms compare equal before the accent
// marks (combining diacritics) are filtered out.
func fuzzyEqual(a, b string) bool {
	return alphanumericFold(a) == alphanumericFold(b)
}

func alphanumericFold(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// numericValue extracts a signed integer from input. NFKC normalizes full-
// width digit forms to ASCII first; everything but letters, digits, and
// '-' is then dropped (so stray spaces and a "+" sign disappear), and the
// result is parsed with the strict signed-integer grammar: a stray letter
// or a dash that isn't a single leading sign makes the parse fail rather
// than being silently stripped away.
func numericValue(input string) (int32, bool) {
	composed := norm.NFKC.String(input)
	var b strings.Builder
	for _, r := range composed {
		if r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	n, err := strconv.ParseInt(b.String(), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}
