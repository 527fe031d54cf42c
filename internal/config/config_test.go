package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
api:
  username: "user@example.com"
  password: "hunter2"
  rate_limit: 2.5
  rate_limit_burst: 4

influx:
  tags:
    site: home
  strict: true

watch:
  schedule: "*/15 * * * *"
  window_minutes: 60

logging:
  level: "debug"
  format: "json"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := Load(configPath)
	assert.NoError(t, err)
	assert.NotNil(t, config)

	assert.Equal(t, "user@example.com", config.API.Username)
	assert.Equal(t, "hunter2", config.API.Password)
	assert.Equal(t, 2.5, config.API.RateLimit)
	assert.Equal(t, 4, config.API.RateLimitBurst)
	assert.Equal(t, map[string]string{"site": "home"}, config.Influx.Tags)
	assert.True(t, config.Influx.Strict)
	assert.Equal(t, "*/15 * * * *", config.Watch.Schedule)
	assert.Equal(t, 60, config.Watch.WindowMinutes)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)

	// Unset values fall back to defaults.
	assert.Equal(t, "https://api.glowmarkt.com/api/v0-1", config.API.BaseURL)
	assert.Equal(t, 128, config.API.CacheSize)
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	assert.NoError(t, err)
	assert.NotNil(t, config)

	assert.Equal(t, "https://api.glowmarkt.com/api/v0-1", config.API.BaseURL)
	assert.Equal(t, "b0f1b774-a586-4f72-9edd-27ead8aa7a8d", config.API.ApplicationID)
	assert.Equal(t, 5.0, config.API.RateLimit)
	assert.Equal(t, 10, config.API.RateLimitBurst)
	assert.Equal(t, "*/30 * * * *", config.Watch.Schedule)
	assert.Equal(t, 120, config.Watch.WindowMinutes)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
}

func TestLoadExpandsEnvInFile(t *testing.T) {
	t.Setenv("BRIGHT_USER", "env@example.com")
	t.Setenv("BRIGHT_PASS", "secret")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
api:
  username: $BRIGHT_USER
  password: ${BRIGHT_PASS}
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := Load(configPath)
	assert.NoError(t, err)

	assert.Equal(t, "env@example.com", config.API.Username)
	assert.Equal(t, "secret", config.API.Password)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GLOWMARKT_API_USERNAME", "override@example.com")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
api:
  username: "file@example.com"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	config, err := Load(configPath)
	assert.NoError(t, err)

	assert.Equal(t, "override@example.com", config.API.Username)
}

func TestLoadEnvCredentialsWithoutFile(t *testing.T) {
	t.Setenv("GLOWMARKT_API_USERNAME", "env-only@example.com")
	t.Setenv("GLOWMARKT_API_PASSWORD", "env-secret")
	t.Setenv("GLOWMARKT_API_TOKEN", "env-token")

	config, err := Load("")
	assert.NoError(t, err)

	assert.Equal(t, "env-only@example.com", config.API.Username)
	assert.Equal(t, "env-secret", config.API.Password)
	assert.Equal(t, "env-token", config.API.Token)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
