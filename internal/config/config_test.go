package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Defaults, file loading, env overrides, validation
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SEEK_LOG_LEVEL", "SEEK_DEBUG", "SEEK_HTTP_PORT", "SEEK_SNAPSHOT"} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8, cfg.Daemon.PoolSize)
	assert.Equal(t, 150, cfg.Daemon.DebounceMs)
	assert.Equal(t, 500, cfg.Index.HistoryLimit)
	assert.Equal(t, "default", cfg.Corpus.Profile)
	assert.True(t, cfg.Corpus.Watch)
	assert.Equal(t, 12, cfg.Search.Limit)
	assert.False(t, cfg.Search.WebSearch)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadPartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`
search:
  limit: 20
  web_search: true
corpus:
  snapshot_path: /tmp/browser.json
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Search.Limit)
	assert.True(t, cfg.Search.WebSearch)
	assert.Equal(t, "/tmp/browser.json", cfg.Corpus.SnapshotPath)
	// Untouched sections keep their defaults.
	assert.Equal(t, 500, cfg.Index.HistoryLimit)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadInvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("search: [oops"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadInvalidValue(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("search:\n  limit: 0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.limit")
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEEK_LOG_LEVEL", "warn")
	t.Setenv("SEEK_HTTP_PORT", "-1")
	t.Setenv("SEEK_SNAPSHOT", "/data/snap.yaml")

	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, -1, cfg.Daemon.HTTPPort)
	assert.Equal(t, "/data/snap.yaml", cfg.Corpus.SnapshotPath)
}

func TestEnvDebugWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEEK_LOG_LEVEL", "error")
	t.Setenv("SEEK_DEBUG", "1")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvIgnoresBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SEEK_LOG_LEVEL", "verbose")
	t.Setenv("SEEK_HTTP_PORT", "eighty")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 0, cfg.Daemon.HTTPPort)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"port too high", func(c *Config) { c.Daemon.HTTPPort = 70000 }, "daemon.http_port"},
		{"no workers", func(c *Config) { c.Daemon.PoolSize = 0 }, "daemon.pool_size"},
		{"negative debounce", func(c *Config) { c.Daemon.DebounceMs = -5 }, "daemon.debounce_ms"},
		{"no history", func(c *Config) { c.Index.HistoryLimit = 0 }, "index.history_limit"},
		{"empty profile", func(c *Config) { c.Corpus.Profile = "" }, "corpus.profile"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Search.Limit = 30
	cfg.Corpus.Profile = "work"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// =============================================================================
// Get/Set by key
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("search.limit")
	require.NoError(t, err)
	assert.Equal(t, "12", v)

	require.NoError(t, cfg.Set("search.limit", "25"))
	assert.Equal(t, 25, cfg.Search.Limit)

	require.NoError(t, cfg.Set("search.web_search", "true"))
	assert.True(t, cfg.Search.WebSearch)

	require.NoError(t, cfg.Set("corpus.snapshot_path", "/x.json"))
	v, _ = cfg.Get("corpus.snapshot_path")
	assert.Equal(t, "/x.json", v)
}

func TestSetRejects(t *testing.T) {
	cfg := Default()

	assert.Error(t, cfg.Set("search.limit", "many"))
	assert.Error(t, cfg.Set("corpus.watch", "maybe"))
	assert.Error(t, cfg.Set("nope.key", "1"))
	assert.Error(t, cfg.Set("limit", "1"))

	// Validation failure restores the old value.
	assert.Error(t, cfg.Set("log.level", "loud"))
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestListKeys(t *testing.T) {
	keys := ListKeys()
	assert.Contains(t, keys, "daemon.http_port")
	assert.Contains(t, keys, "log.compress")
	for i := 1; i < len(keys); i++ {
		assert.Less(t, keys[i-1], keys[i])
	}
	for _, k := range keys {
		_, err := Default().Get(k)
		assert.NoError(t, err, k)
	}
}
