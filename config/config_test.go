package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waqtek/hr-ledger/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "./data/hr.db", cfg.DBPath)
	assert.Equal(t, "24h0m0s", cfg.TokenTTL.String())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HR_ADDR", ":9999")
	t.Setenv("HR_DB_PATH", ":memory:")
	t.Setenv("HR_TOKEN_TTL", "15m")
	t.Setenv("HR_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, "15m0s", cfg.TokenTTL.String())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoad_BadTTL(t *testing.T) {
	t.Setenv("HR_TOKEN_TTL", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}
