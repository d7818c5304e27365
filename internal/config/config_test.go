package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(journalEnv, "")
	t.Setenv(databaseDSNEnv, "")

	cfg := Load("")
	assert.Equal(t, 25, cfg.Crawler.PageSize)
	assert.Equal(t, 10, cfg.Crawler.MaxAttempts)
	assert.Equal(t, "out", cfg.Crawler.ReportDir)
	assert.Equal(t, 30*time.Second, cfg.Catalog.Timeout())
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.Every())
	assert.Contains(t, cfg.Catalog.TOCResultURL, "tocresult.jsp")
}

func TestLoadFileKeepsUnsetDefaults(t *testing.T) {
	t.Setenv(journalEnv, "")
	t.Setenv(databaseDSNEnv, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
journal: "6287639"
crawler:
  reportDir: reports
scheduler:
  interval: 6h
database:
  dsn: postgres://crawler@db:5432/catalog
`), 0o644))

	cfg := Load(path)
	assert.Equal(t, "6287639", cfg.Journal)
	assert.Equal(t, "reports", cfg.Crawler.ReportDir)
	assert.Equal(t, 25, cfg.Crawler.PageSize)
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Every())
	assert.Equal(t, "postgres://crawler@db:5432/catalog", cfg.Database.DSN)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(journalEnv, "42")
	t.Setenv(databaseDSNEnv, "postgres://env@host/db")
	t.Setenv(telegramTokenEnv, "token")
	t.Setenv(telegramChatIDEnv, "chat")

	cfg := Load("")
	assert.Equal(t, "42", cfg.Journal)
	assert.Equal(t, "postgres://env@host/db", cfg.Database.DSN)
	assert.True(t, cfg.Notifications.Telegram.Enabled())
}

func TestLoadBrokenFileFallsBack(t *testing.T) {
	t.Setenv(journalEnv, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawler: [unterminated"), 0o644))

	cfg := Load(path)
	assert.Equal(t, 25, cfg.Crawler.PageSize)
	assert.Empty(t, cfg.Journal)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	require.Error(t, cfg.Validate())

	cfg.Journal = "abc"
	require.Error(t, cfg.Validate())

	cfg.Journal = "6287639"
	require.NoError(t, cfg.Validate())
}
