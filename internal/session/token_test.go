package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tok, err := NewToken()
	require.NoError(t, err)

	s := tok.String()
	require.NotContains(t, s, "=")
	require.NotContains(t, s, "+")
	require.NotContains(t, s, "/")

	parsed, err := ParseToken(s)
	require.NoError(t, err)
	require.Equal(t, tok, parsed)
}

func TestParseTokenRejectsBadInput(t *testing.T) {
	_, err := ParseToken("not valid base64!!")
	require.Error(t, err)

	_, err = ParseToken("YWJj")
	require.Error(t, err, "decodes fine but is the wrong length")
}

func TestTokensAreDistinct(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
