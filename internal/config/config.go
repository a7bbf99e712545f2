// Package config loads jobskills settings from defaults, an optional YAML
// file and JOBSKILLS_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "JOBSKILLS_"

// Source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Cache backends.
const (
	CacheLRU   = "lru"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds every runtime setting.
type Config struct {
	DBPath      string       `yaml:"db" env:"DB"`
	Source      SourceConfig `yaml:"source" envPrefix:"SOURCE_"`
	Cache       CacheConfig  `yaml:"cache" envPrefix:"CACHE_"`
	Log         LogConfig    `yaml:"log" envPrefix:"LOG_"`
	MetricsFile string       `yaml:"metrics_file" env:"METRICS_FILE"`
	Watch       WatchConfig  `yaml:"watch" envPrefix:"WATCH_"`
}

// SourceConfig selects where raw records are loaded from.
type SourceConfig struct {
	Kind        string `yaml:"kind" env:"KIND"`
	DataDir     string `yaml:"data_dir" env:"DATA_DIR"`
	PostgresDSN string `yaml:"postgres_dsn" env:"POSTGRES_DSN"`
}

// CacheConfig configures the query result cache.
type CacheConfig struct {
	Backend       string        `yaml:"backend" env:"BACKEND"`
	Size          int           `yaml:"size" env:"SIZE"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// WatchConfig configures the data directory watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`
}

// Dir returns the jobskills config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/jobskills if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "jobskills"), nil
}

// DefaultDBPath returns ~/.jobskills/jobskills.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".jobskills", "jobskills.db"), nil
}

// Default returns the built-in settings.
func Default() *Config {
	dbPath, err := DefaultDBPath()
	if err != nil {
		dbPath = "jobskills.db"
	}
	return &Config{
		DBPath: dbPath,
		Source: SourceConfig{
			Kind:    SourceCSV,
			DataDir: ".",
		},
		Cache: CacheConfig{
			Backend:   CacheLRU,
			Size:      256,
			RedisAddr: "localhost:6379",
			TTL:       10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path and the
// environment. An empty path means {Dir()}/config.yaml, which may be
// absent; an explicit path must exist. The result is not validated so
// callers can overlay flags first; call Validate afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}

	if path != "" {
		err := loadFile(cfg, path)
		if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return nil, err
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ParseEnv overlays JOBSKILLS_* environment variables onto target. Unset
// variables leave the existing values alone.
func ParseEnv(target any) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks that enumerated settings hold known values.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceCSV:
	case SourcePostgres:
		if c.Source.PostgresDSN == "" {
			return fmt.Errorf("source kind %q requires a postgres DSN", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown source kind %q (want %s or %s)", c.Source.Kind, SourceCSV, SourcePostgres)
	}

	switch c.Cache.Backend {
	case CacheLRU, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unknown cache backend %q (want %s, %s or %s)", c.Cache.Backend, CacheLRU, CacheRedis, CacheNone)
	}

	if c.DBPath == "" {
		return errors.New("database path is empty")
	}
	return nil
}
