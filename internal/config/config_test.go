package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`database:
  dsn: "host=localhost dbname=test"
alerts:
  webhook_url: "https://hooks.example.com/notify"
`)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), content, 0o644))

	cfg, err := LoadConfig(dir)
	assert.NoError(t, err)

	assert.Equal(t, "host=localhost dbname=test", cfg.Database.DSN)
	assert.Equal(t, "https://hooks.example.com/notify", cfg.Alerts.WebhookURL)

	// Unset keys fall back to defaults.
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, float64(5), cfg.Alerts.WarnThreshold)
	assert.Equal(t, float64(10), cfg.Alerts.CriticalThreshold)
	assert.Equal(t, "https://api.anthropic.com/v1", cfg.AI.BaseURL)
	assert.Equal(t, 4096, cfg.AI.MaxTokens)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}
