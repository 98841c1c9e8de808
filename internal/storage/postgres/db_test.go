package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildercircle/server/internal/config"
)

func TestPoolConfigAppliesSizing(t *testing.T) {
	cfg, err := poolConfig(config.DatabaseConfig{
		URL:            "postgres://localhost/circle",
		MaxConnections: 25,
		MinIdle:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(25), cfg.MaxConns)
	assert.Equal(t, int32(2), cfg.MinIdleConns)
	assert.Equal(t, defaultMaxConnLifetime, cfg.MaxConnLifetime)
}

func TestPoolConfigZeroSizingKeepsPgxDefaults(t *testing.T) {
	cfg, err := poolConfig(config.DatabaseConfig{URL: "postgres://localhost/circle"})
	require.NoError(t, err)
	assert.Positive(t, cfg.MaxConns)
	assert.Zero(t, cfg.MinIdleConns)
}

func TestPoolConfigRejectsBadURL(t *testing.T) {
	_, err := poolConfig(config.DatabaseConfig{URL: "://nope"})
	assert.Error(t, err)
}
