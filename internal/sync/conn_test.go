package sync

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeflateInflateRoundTrip(t *testing.T) {
	original := []byte(`{"type":"view","widgets":[]}`)

	compressed, err := deflate(original)
	require.NoError(t, err)
	require.NotEmpty(t, compressed)

	decompressed, err := inflate(compressed)
	require.NoError(t, err)
	require.Equal(t, original, decompressed)
}
