package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8, cfg.Scraper.Concurrency)
	require.Equal(t, 25, cfg.Scraper.ChunkSize)
	require.Equal(t, 3, cfg.Scraper.MaxRetries)
	require.Equal(t, "drop", cfg.Scraper.FailurePolicy)
	require.Equal(t, "memory", cfg.Cache.Backend)
	require.Equal(t, "none", cfg.Storage.Backend)
	require.False(t, cfg.Headless.Enabled)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout())
	require.Equal(t, 15*time.Second, cfg.HTTPTimeout())
	require.Equal(t, time.Second, cfg.ChunkPause())
	require.Equal(t, 250*time.Millisecond, cfg.BackoffBase())
	require.Equal(t, 5*time.Second, cfg.BackoffMax())
	require.Equal(t, 15*time.Minute, cfg.CacheTTL())
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
scraper:
  concurrency: 3
  chunk_size: 10
  failure_policy: keep
cache:
  backend: redis
  redis_addr: localhost:6379
  ttl_seconds: 60
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Scraper.Concurrency)
	require.Equal(t, 10, cfg.Scraper.ChunkSize)
	require.Equal(t, "keep", cfg.Scraper.FailurePolicy)
	require.Equal(t, "redis", cfg.Cache.Backend)
	require.Equal(t, time.Minute, cfg.CacheTTL())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SCRAPER_SCRAPER_CONCURRENCY", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Scraper.Concurrency)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.Scraper.Concurrency = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Scraper.FailurePolicy = "panic"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.HTTP.TimeoutSeconds = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisAddr = ""
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Storage.Backend = "gcs"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.DB.Enabled = true
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.PubSub.Enabled = true
	require.Error(t, cfg.Validate())
}

func TestLoadRejectsMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
