package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{Telegram: TelegramConfig{Token: "123:abc", StaffChatID: -100}}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Empty(t, cfg.Metrics.Path)
}

func TestNormalizeAutoMode(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "AUTO"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)

	cfg = validConfig()
	cfg.Telegram.RunMode = RunModeAuto
	cfg.Webhook.URL = "https://bot.example.com/hook"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeWebhook, cfg.Telegram.RunMode)
	assert.Equal(t, "0.0.0.0", cfg.Webhook.Listen)
	assert.Equal(t, 8000, cfg.Webhook.Port)
}

func TestNormalizePollingAlias(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
}

func TestNormalizeErrors(t *testing.T) {
	cases := map[string]func(*Config){
		"missing token":        func(c *Config) { c.Telegram.Token = " " },
		"missing staff chat":   func(c *Config) { c.Telegram.StaffChatID = 0 },
		"unknown run mode":     func(c *Config) { c.Telegram.RunMode = "push" },
		"webhook without url":  func(c *Config) { c.Telegram.RunMode = RunModeWebhook },
		"bad exclude update":   func(c *Config) { c.RateLimit.ExcludeUpdates = []string{"photo"} },
		"negative interval":    func(c *Config) { c.RateLimit.IntervalMS = -1 },
		"webhook port too big": func(c *Config) { c.Webhook.Port = 70000 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, Normalize(cfg))
		})
	}
}

func TestNormalizeRateLimitAndMetrics(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "", "MESSAGE"}
	cfg.Metrics.Listen = ":9090"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, []string{"callback", "", "message"}, cfg.RateLimit.ExcludeUpdates)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadOverlaysEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
telegram:
  token: "from-yaml"
  staff_chat_id: -1
logging:
  level: debug
`), 0o600))
	t.Setenv("STAFF_CHAT_ID", "-42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.Telegram.Token)
	assert.Equal(t, int64(-42), cfg.Telegram.StaffChatID)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
