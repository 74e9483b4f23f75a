package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 8080
prometheus_port = 2112
log_level = "trace"
log_to_stdout = true
session_ttl_minutes = 30
login_rate_limit_per_min = 15
load_sample_data = true

[production]
port = 9000
prometheus_port = 2112
log_level = "debug"
logs_path = "/var/log/fitness-tracker/service.log"
sentry_enabled = true
sentry_server_name = "fitness-tracker"
honeycomb_enabled = true
`

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigContent), 0o600))

	cfg, err := Load("development", configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 2112, cfg.PrometheusPort)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.True(t, cfg.LogToStdout)
	assert.Equal(t, 30, cfg.SessionTTLMinutes)
	assert.Equal(t, 15, cfg.LoginRateLimitPerMin)
	assert.True(t, cfg.LoadSampleData)
	assert.False(t, cfg.SentryEnabled)

	cfg, err = Load("prod", configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/var/log/fitness-tracker/service.log", cfg.LogsPath)
	assert.True(t, cfg.SentryEnabled)
	assert.True(t, cfg.HoneycombEnabled)
	assert.False(t, cfg.LoadSampleData)
}

func TestLoad_unknownEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigContent), 0o600))

	cfg, err := Load("staging", configPath)
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "unknown env")
}

func TestLoad_missingFile(t *testing.T) {
	cfg, err := Load("development", "/nonexistent/config.toml")
	require.Error(t, err)
	assert.Nil(t, cfg)
}
