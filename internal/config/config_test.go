package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5, cfg.Ranking.Leaders)
	assert.Equal(t, "America/Sao_Paulo", cfg.Cache.Timezone)
	assert.Equal(t, 4000, cfg.Claude.MaxTokens)
	assert.Equal(t, 2*time.Minute, cfg.Claude.Timeout)
	assert.Equal(t, "0 0 19 * * 1-5", cfg.Schedule.RefreshCron)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
ranking:
  leaders: 10
claude:
  model: claude-test
  timeout: 30s
schedule:
  refresh_cron: "0 30 18 * * *"
log:
  level: debug
  pretty: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Ranking.Leaders)
	assert.Equal(t, "claude-test", cfg.Claude.Model)
	assert.Equal(t, 30*time.Second, cfg.Claude.Timeout)
	assert.Equal(t, "0 30 18 * * *", cfg.Schedule.RefreshCron)
	assert.True(t, cfg.Log.Pretty)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "ranking:\n  leaders: 10\n")
	t.Setenv("RANKING_LEADERS", "3")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("RUN_ON_START", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Ranking.Leaders)
	assert.Equal(t, "sk-test", cfg.Claude.APIKey)
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Schedule.RunOnStart)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	base := func(t *testing.T) *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		return cfg
	}

	cfg := base(t)
	cfg.Schedule.RefreshCron = "every day"
	assert.ErrorContains(t, cfg.Validate(), "schedule.refresh_cron")

	cfg = base(t)
	cfg.Cache.Timezone = "Mars/Olympus"
	assert.ErrorContains(t, cfg.Validate(), "cache.timezone")

	cfg = base(t)
	cfg.Telegram.BotToken = "token"
	assert.ErrorContains(t, cfg.Validate(), "set together")

	cfg = base(t)
	cfg.Ranking.Leaders = -1
	assert.Error(t, cfg.Validate())
}
