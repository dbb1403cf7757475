// Package config loads flowpen's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config holds flowpen configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	Cache   CacheConfig   `toml:"cache"`
	Redis   RedisConfig   `toml:"redis"`
	Mongo   MongoConfig   `toml:"mongo"`
	Library LibraryConfig `toml:"library"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error"
}

// HistoryConfig bounds the undo stack of every graph.
type HistoryConfig struct {
	Limit int `toml:"limit"`
}

// ServerConfig controls the HTTP session server.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// Autosave writes each session's manifest to the cache after every
	// committed change.
	Autosave bool `toml:"autosave"`
}

// StorageConfig controls where saved graphs go.
type StorageConfig struct {
	Dir       string `toml:"dir"`
	Revisions string `toml:"revisions"` // "memory", "mongo"
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // "file", "redis", "none"
	Dir     string `toml:"dir"`
	TTL     string `toml:"ttl"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// LibraryConfig locates the template library.
type LibraryConfig struct {
	// Endpoint is a GraphQL endpoint serving getInstalledComponents.
	Endpoint string `toml:"endpoint"`
	// Path is a local JSON or HCL library file. It wins over Endpoint.
	Path string `toml:"path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log:     LogConfig{Level: "info"},
		History: HistoryConfig{Limit: 100},
		Server:  ServerConfig{Addr: "127.0.0.1:8080"},
		Storage: StorageConfig{Revisions: "memory"},
		Cache:   CacheConfig{Backend: CacheFile, TTL: "24h"},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Mongo:   MongoConfig{URI: "mongodb://localhost:27017", Database: "flowpen"},
	}
}

// CacheTTL parses Cache.TTL. An empty or invalid value means no expiry.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	switch c.Storage.Revisions {
	case "memory", "mongo":
	default:
		return fmt.Errorf("storage.revisions: unknown repository %q", c.Storage.Revisions)
	}
	if c.History.Limit < 1 {
		return fmt.Errorf("history.limit: must be at least 1, got %d", c.History.Limit)
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("cache.ttl: %w", err)
		}
	}
	return nil
}

// Dir returns the flowpen config directory path.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "flowpen")
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path on top of the defaults. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, or to the default path when empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
