package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Catalog store backends.
const (
	StoreDatabase = "database"
	StoreRedis    = "redis"
)

const (
	EnvCatalogStore        = "EMALFDRAW_CATALOG_STORE"
	EnvCatalogSkipSeed     = "EMALFDRAW_CATALOG_SKIP_SEED"
	EnvCatalogDefaultsFile = "EMALFDRAW_CATALOG_DEFAULTS_FILE"
	EnvCatalogStoreTimeout = "EMALFDRAW_CATALOG_STORE_TIMEOUT"
	EnvBreakerEnabled      = "EMALFDRAW_BREAKER_ENABLED"
	EnvBreakerRatio        = "EMALFDRAW_BREAKER_FAILURE_RATIO"
)

// CatalogConfig selects the idea store and controls seeding.
type CatalogConfig struct {
	Store        string        `toml:"store"`
	SkipSeed     bool          `toml:"skip_seed"`
	DefaultsFile string        `toml:"defaults_file"`
	StoreTimeout string        `toml:"store_timeout"`
	Breaker      BreakerConfig `toml:"breaker"`
}

// BreakerConfig configures the circuit breaker placed in front of the store.
type BreakerConfig struct {
	Enabled      bool    `toml:"enabled"`
	MaxRequests  uint32  `toml:"max_requests"`
	Interval     string  `toml:"interval"`
	Timeout      string  `toml:"timeout"`
	FailureRatio float64 `toml:"failure_ratio"`
	MinRequests  uint32  `toml:"min_requests"`
}

// StoreTimeoutDuration returns StoreTimeout as a time.Duration.
func (c *CatalogConfig) StoreTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.StoreTimeout)
	return d
}

// IntervalDuration returns Interval as a time.Duration.
func (c *BreakerConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *BreakerConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// defaultsFile is the TOML form of a prompts file.
type defaultsFile struct {
	Prompts []string `toml:"prompts"`
}

// LoadDefaults reads the default prompt file. A .toml file holds a
// top-level prompts array; any other file holds one prompt per line, with
// blank lines and lines starting with # ignored. It returns nil when no file
// is configured so callers fall back to the built-in prompts.
func (c *CatalogConfig) LoadDefaults() ([]string, error) {
	if c.DefaultsFile == "" {
		return nil, nil
	}

	if strings.EqualFold(filepath.Ext(c.DefaultsFile), ".toml") {
		return loadDefaultsTOML(c.DefaultsFile)
	}

	f, err := os.Open(c.DefaultsFile)
	if err != nil {
		return nil, fmt.Errorf("open defaults file: %w", err)
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read defaults file: %w", err)
	}

	return texts, nil
}

func loadDefaultsTOML(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defaults file: %w", err)
	}

	var file defaultsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse defaults file: %w", err)
	}

	texts := make([]string, 0, len(file.Prompts))
	for _, p := range file.Prompts {
		if text := strings.TrimSpace(p); text != "" {
			texts = append(texts, text)
		}
	}
	return texts, nil
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CatalogConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites fields from overlay. Booleans always apply.
func (c *CatalogConfig) Merge(overlay *CatalogConfig) {
	if overlay.Store != "" {
		c.Store = overlay.Store
	}
	if overlay.DefaultsFile != "" {
		c.DefaultsFile = overlay.DefaultsFile
	}
	if overlay.StoreTimeout != "" {
		c.StoreTimeout = overlay.StoreTimeout
	}
	c.SkipSeed = overlay.SkipSeed
	c.Breaker.Merge(&overlay.Breaker)
}

// Merge overwrites non-zero fields from overlay. Enabled always applies.
func (c *BreakerConfig) Merge(overlay *BreakerConfig) {
	c.Enabled = overlay.Enabled
	if overlay.MaxRequests != 0 {
		c.MaxRequests = overlay.MaxRequests
	}
	if overlay.Interval != "" {
		c.Interval = overlay.Interval
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.FailureRatio != 0 {
		c.FailureRatio = overlay.FailureRatio
	}
	if overlay.MinRequests != 0 {
		c.MinRequests = overlay.MinRequests
	}
}

func (c *CatalogConfig) loadDefaults() {
	if c.Store == "" {
		c.Store = StoreDatabase
	}
	if c.StoreTimeout == "" {
		c.StoreTimeout = "5s"
	}

	b := &c.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 1
	}
	if b.Interval == "" {
		b.Interval = "1m"
	}
	if b.Timeout == "" {
		b.Timeout = "30s"
	}
	if b.FailureRatio == 0 {
		b.FailureRatio = 0.6
	}
	if b.MinRequests == 0 {
		b.MinRequests = 5
	}
}

func (c *CatalogConfig) loadEnv() {
	if v := os.Getenv(EnvCatalogStore); v != "" {
		c.Store = v
	}
	if v := os.Getenv(EnvCatalogSkipSeed); v != "" {
		if skip, err := strconv.ParseBool(v); err == nil {
			c.SkipSeed = skip
		}
	}
	if v := os.Getenv(EnvCatalogDefaultsFile); v != "" {
		c.DefaultsFile = v
	}
	if v := os.Getenv(EnvCatalogStoreTimeout); v != "" {
		c.StoreTimeout = v
	}
	if v := os.Getenv(EnvBreakerEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Breaker.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvBreakerRatio); v != "" {
		if ratio, err := strconv.ParseFloat(v, 64); err == nil {
			c.Breaker.FailureRatio = ratio
		}
	}
}

func (c *CatalogConfig) validate() error {
	switch c.Store {
	case StoreDatabase, StoreRedis:
	default:
		return fmt.Errorf("unsupported store: %q", c.Store)
	}
	if _, err := time.ParseDuration(c.StoreTimeout); err != nil {
		return fmt.Errorf("invalid store_timeout: %w", err)
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker failure_ratio must be in (0, 1]: %v", c.Breaker.FailureRatio)
	}
	if _, err := time.ParseDuration(c.Breaker.Interval); err != nil {
		return fmt.Errorf("invalid breaker interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Breaker.Timeout); err != nil {
		return fmt.Errorf("invalid breaker timeout: %w", err)
	}
	return nil
}
