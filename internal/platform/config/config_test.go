package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrefersFlagOverEnv(t *testing.T) {
	t.Setenv("PG_CONFIG", "postgres://env/db")
	t.Setenv("LOG_COLOR", "true")

	cfg, err := Load(Flags{Address: ":9090", DB: "postgres://flag/db"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/db", cfg.DB)
	assert.Equal(t, ":9090", cfg.Address)
	assert.True(t, cfg.LogColor)
}

func TestLoadFallsBackToEnv(t *testing.T) {
	t.Setenv("PG_CONFIG", "postgres://env/db")

	cfg, err := Load(Flags{Address: ":8080"})
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", cfg.DB)
}

func TestLoadRequiresDatabase(t *testing.T) {
	t.Setenv("PG_CONFIG", "")

	_, err := Load(Flags{Address: ":8080"})
	assert.Error(t, err)
}

func TestParseFlagsDefaults(t *testing.T) {
	flags, err := ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[::]:8000", flags.Address)
	assert.Equal(t, "", flags.DB)
}

func TestParseFlagsOverride(t *testing.T) {
	flags, err := ParseFlags([]string{"--address", ":1234", "--db", "postgres://x", "--serve", "./public"})
	require.NoError(t, err)
	assert.Equal(t, ":1234", flags.Address)
	assert.Equal(t, "postgres://x", flags.DB)
	assert.Equal(t, "./public", flags.Serve)
}
