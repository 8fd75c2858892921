// Package config loads EmalfDraw settings from TOML files and EMALFDRAW_*
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/emalfdraw/pkg/database"
	"github.com/JaimeStill/emalfdraw/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvEmalfdrawEnv             = "EMALFDRAW_ENV"
	EnvEmalfdrawConfig          = "EMALFDRAW_CONFIG"
	EnvEmalfdrawShutdownTimeout = "EMALFDRAW_SHUTDOWN_TIMEOUT"
	EnvEmalfdrawVersion         = "EMALFDRAW_VERSION"
	EnvEmalfdrawLogLevel        = "EMALFDRAW_LOG_LEVEL"
)

var databaseEnv = &database.Env{
	Driver:          "EMALFDRAW_DB_DRIVER",
	Path:            "EMALFDRAW_DB_PATH",
	Host:            "EMALFDRAW_DB_HOST",
	Port:            "EMALFDRAW_DB_PORT",
	Name:            "EMALFDRAW_DB_NAME",
	User:            "EMALFDRAW_DB_USER",
	Password:        "EMALFDRAW_DB_PASSWORD",
	SSLMode:         "EMALFDRAW_DB_SSL_MODE",
	MaxOpenConns:    "EMALFDRAW_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "EMALFDRAW_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "EMALFDRAW_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "EMALFDRAW_DB_CONN_TIMEOUT",
}

var redisEnv = &storage.Env{
	Addr:        "EMALFDRAW_REDIS_ADDR",
	Password:    "EMALFDRAW_REDIS_PASSWORD",
	DB:          "EMALFDRAW_REDIS_DB",
	Prefix:      "EMALFDRAW_REDIS_PREFIX",
	DialTimeout: "EMALFDRAW_REDIS_DIAL_TIMEOUT",
	PoolSize:    "EMALFDRAW_REDIS_POOL_SIZE",
}

// Config is the root configuration for the EmalfDraw service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Redis           storage.Config  `toml:"redis"`
	Catalog         CatalogConfig   `toml:"catalog"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// Env returns the EMALFDRAW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvEmalfdrawEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// UsesDatabase reports whether the catalog store needs a SQL connection.
func (c *Config) UsesDatabase() bool {
	return c.Catalog.Store == StoreDatabase
}

// UsesRedis reports whether the catalog store needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Catalog.Store == StoreRedis
}

// Load reads the base config (EMALFDRAW_CONFIG or config.toml, if present),
// applies any environment overlay, and finalizes all values. If no base file
// exists, defaults and environment variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	base := BaseConfigFile
	if v := os.Getenv(EnvEmalfdrawConfig); v != "" {
		base = v
	}

	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Redis.Merge(&overlay.Redis)
	c.Catalog.Merge(&overlay.Catalog)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Redis.Finalize(redisEnv); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Catalog.Finalize(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvEmalfdrawShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvEmalfdrawVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvEmalfdrawLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvEmalfdrawEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
