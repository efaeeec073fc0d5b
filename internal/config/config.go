// Package config loads the seek configuration file (.seek/config.yaml).
// A missing file yields defaults; environment variables override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file name inside the data directory.
const FileName = "config.yaml"

// Config represents the seek configuration.
type Config struct {
	Daemon DaemonConfig `yaml:"daemon"`
	Index  IndexConfig  `yaml:"index"`
	Corpus CorpusConfig `yaml:"corpus"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
}

// DaemonConfig holds daemon-related settings.
type DaemonConfig struct {
	SocketPath string `yaml:"socket_path"` // Unix socket path (empty = derived from data dir)
	HTTPPort   int    `yaml:"http_port"`   // HTTP API port (0 = derived, -1 = disabled)
	PoolSize   int    `yaml:"pool_size"`   // Concurrent query workers
	DebounceMs int    `yaml:"debounce_ms"` // Snapshot watch debounce
}

// IndexConfig holds index build settings.
type IndexConfig struct {
	HistoryLimit int `yaml:"history_limit"` // Most recent history entries indexed
}

// CorpusConfig holds corpus source settings.
type CorpusConfig struct {
	SnapshotPath string `yaml:"snapshot_path"` // JSON/YAML snapshot imported on change (empty = none)
	Watch        bool   `yaml:"watch"`         // Re-import when the snapshot file changes
	Profile      string `yaml:"profile"`       // Store profile the daemon serves
}

// SearchConfig holds query defaults.
type SearchConfig struct {
	Limit     int  `yaml:"limit"`      // Result cap for non-history queries
	WebSearch bool `yaml:"web_search"` // Append a web search result to unscoped queries
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `yaml:"level"`        // debug, info, warn, error
	Format     string `yaml:"format"`       // json or text
	MaxSizeMB  int    `yaml:"max_size_mb"`  // Rotate after this size
	MaxBackups int    `yaml:"max_backups"`  // Rotated files kept
	MaxAgeDays int    `yaml:"max_age_days"` // Days rotated files are kept
	Compress   bool   `yaml:"compress"`     // Gzip rotated files
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			PoolSize:   8,
			DebounceMs: 150,
		},
		Index: IndexConfig{
			HistoryLimit: 500,
		},
		Corpus: CorpusConfig{
			Watch:   true,
			Profile: "default",
		},
		Search: SearchConfig{
			Limit: 12,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}
}

// Load reads the configuration from path. If the file doesn't exist, the
// defaults are returned. Environment overrides are applied after loading.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnv applies environment variable overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SEEK_LOG_LEVEL"); v != "" && isValidLogLevel(v) {
		c.Log.Level = v
	}
	if os.Getenv("SEEK_DEBUG") == "1" {
		c.Log.Level = "debug"
	}
	if v := os.Getenv("SEEK_HTTP_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Daemon.HTTPPort = n
		}
	}
	if v := os.Getenv("SEEK_SNAPSHOT"); v != "" {
		c.Corpus.SnapshotPath = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Daemon.HTTPPort < -1 || c.Daemon.HTTPPort > 65535 {
		return fmt.Errorf("daemon.http_port must be -1..65535 (got: %d)", c.Daemon.HTTPPort)
	}
	if c.Daemon.PoolSize < 1 {
		return errors.New("daemon.pool_size must be >= 1")
	}
	if c.Daemon.DebounceMs < 0 {
		return errors.New("daemon.debounce_ms must be >= 0")
	}
	if c.Index.HistoryLimit < 1 {
		return errors.New("index.history_limit must be >= 1")
	}
	if c.Corpus.Profile == "" {
		return errors.New("corpus.profile must not be empty")
	}
	if c.Search.Limit < 1 {
		return errors.New("search.limit must be >= 1")
	}
	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("log.format must be json or text (got: %s)", c.Log.Format)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// field binds one dot-separated key to its config value.
type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intField(p func(c *Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer: %s", v)
			}
			*p(c) = n
			return nil
		},
	}
}

func boolField(p func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean: %s", v)
			}
			*p(c) = b
			return nil
		},
	}
}

func stringField(p func(c *Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error { *p(c) = v; return nil },
	}
}

var fields = map[string]field{
	"daemon.socket_path":   stringField(func(c *Config) *string { return &c.Daemon.SocketPath }),
	"daemon.http_port":     intField(func(c *Config) *int { return &c.Daemon.HTTPPort }),
	"daemon.pool_size":     intField(func(c *Config) *int { return &c.Daemon.PoolSize }),
	"daemon.debounce_ms":   intField(func(c *Config) *int { return &c.Daemon.DebounceMs }),
	"index.history_limit":  intField(func(c *Config) *int { return &c.Index.HistoryLimit }),
	"corpus.snapshot_path": stringField(func(c *Config) *string { return &c.Corpus.SnapshotPath }),
	"corpus.watch":         boolField(func(c *Config) *bool { return &c.Corpus.Watch }),
	"corpus.profile":       stringField(func(c *Config) *string { return &c.Corpus.Profile }),
	"search.limit":         intField(func(c *Config) *int { return &c.Search.Limit }),
	"search.web_search":    boolField(func(c *Config) *bool { return &c.Search.WebSearch }),
	"log.level":            stringField(func(c *Config) *string { return &c.Log.Level }),
	"log.format":           stringField(func(c *Config) *string { return &c.Log.Format }),
	"log.max_size_mb":      intField(func(c *Config) *int { return &c.Log.MaxSizeMB }),
	"log.max_backups":      intField(func(c *Config) *int { return &c.Log.MaxBackups }),
	"log.max_age_days":     intField(func(c *Config) *int { return &c.Log.MaxAgeDays }),
	"log.compress":         boolField(func(c *Config) *bool { return &c.Log.Compress }),
}

// Get retrieves a configuration value by dot-separated key, e.g. "search.limit".
func (c *Config) Get(key string) (string, error) {
	f, err := lookup(key)
	if err != nil {
		return "", err
	}
	return f.get(c), nil
}

// Set sets a configuration value by dot-separated key and revalidates. On a
// validation failure the previous value is restored.
func (c *Config) Set(key, value string) error {
	f, err := lookup(key)
	if err != nil {
		return err
	}
	prev := f.get(c)
	if err := f.set(c, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		f.set(c, prev)
		return err
	}
	return nil
}

// ListKeys returns every configuration key in sorted order.
func ListKeys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lookup(key string) (field, error) {
	if strings.Count(key, ".") != 1 {
		return field{}, errors.New("key must be in format 'section.key'")
	}
	f, ok := fields[key]
	if !ok {
		return field{}, fmt.Errorf("unknown key: %s", key)
	}
	return f, nil
}
