package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Engine.Provider)
	assert.Equal(t, 2, cfg.Network.Horizon)
	assert.Equal(t, "#", cfg.Network.Separator)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KTBN_ENGINE", "memory")
	t.Setenv("KTBN_HORIZON", "5")
	t.Setenv("KTBN_SEPARATOR", "@")
	t.Setenv("SERVER_HOST", "0.0.0.0")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("TELEMETRY_PARQUET_PATH", "/tmp/ktbn-telemetry")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Engine.Provider)
	assert.Equal(t, 5, cfg.Network.Horizon)
	assert.Equal(t, "@", cfg.Network.Separator)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/ktbn-telemetry", cfg.Telemetry.ParquetPath)
}

func TestEnvOverridesIgnoreGarbage(t *testing.T) {
	t.Setenv("KTBN_HORIZON", "not-a-number")
	t.Setenv("SERVER_PORT", "zero")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Network.Horizon)
	assert.Equal(t, 8080, cfg.Server.Port)
}
