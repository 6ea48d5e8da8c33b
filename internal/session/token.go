// Package session defines the opaque bearer token handed to a team after
// login and carried on every subsequent request.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes is the number of random bytes backing a token, matching the
// original's 16-byte session token (128 bits, plenty against guessing).
const tokenBytes = 16

// Token is an opaque, URL-safe session identifier.
type Token [tokenBytes]byte

// NewToken generates a fresh random token.
func NewToken() (Token, error) {
	var t Token
	if _, err := rand.Read(t[:]); err != nil {
		return Token{}, fmt.Errorf("session: generate token: %w", err)
	}
	return t, nil
}

// String encodes the token as unpadded URL-safe base64, the form sent to
// and accepted from clients.
func (t Token) String() string {
	return base64.RawURLEncoding.EncodeToString(t[:])
}

// ParseToken decodes a token previously produced by Token.String.
func ParseToken(s string) (Token, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Token{}, fmt.Errorf("session: invalid token encoding: %w", err)
	}
	if len(decoded) != tokenBytes {
		return Token{}, fmt.Errorf("session: invalid token length %d", len(decoded))
	}
	var t Token
	copy(t[:], decoded)
	return t, nil
}

// MarshalText satisfies encoding.TextMarshaler so a Token serializes to
// JSON as its string form.
func (t Token) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText satisfies encoding.TextUnmarshaler.
func (t *Token) UnmarshalText(text []byte) error {
	parsed, err := ParseToken(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
