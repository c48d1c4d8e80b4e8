package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"ODG_API_URL", "ODG_ORIGIN", "ODG_TIMEOUT", "ODG_POLL_INTERVAL",
		"ODG_VENDOR_ID", "ODG_STORAGE_DRIVER", "ODG_STORAGE_PATH", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.API.BaseURL)
	assert.Equal(t, "http://localhost:3000", cfg.API.Origin)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_FileThenEnv(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "console.yaml")
	content := `
api:
  base_url: https://api.odg.test
  timeout: 5s
  poll_interval: 1m
storage:
  driver: sqlite
  path: /tmp/odg.db
vendor:
  id: 7
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.odg.test", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Minute, cfg.API.PollInterval)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, int64(7), cfg.Vendor.ID)
	assert.Equal(t, "debug", cfg.Logging.Level)

	t.Setenv("ODG_API_URL", "")
	t.Setenv("ODG_VENDOR_ID", "12")

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.API.BaseURL, "an empty ODG_API_URL forces same-origin")
	assert.Equal(t, int64(12), cfg.Vendor.ID)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv("ODG_VENDOR_ID", "abc")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ODG_VENDOR_ID")
}
