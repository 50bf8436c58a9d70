package ingest

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pyqvault/pyqvault/pkg/formatting"
)

// Config holds archive ingestion settings.
type Config struct {
	UploadDir        string `toml:"upload_dir"`
	DefaultBatchSize int    `toml:"default_batch_size"`
	Workers          int    `toml:"workers"`
	MaxFetchSize     string `toml:"max_fetch_size"`
	FetchTimeoutMins int    `toml:"fetch_timeout_minutes"`

	maxFetchSizeBytes int64
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	UploadDir string
	Workers   string
}

// Finalize applies defaults and environment variable overrides, then validates.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields present in the overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.UploadDir != "" {
		c.UploadDir = overlay.UploadDir
	}
	if overlay.DefaultBatchSize > 0 {
		c.DefaultBatchSize = overlay.DefaultBatchSize
	}
	if overlay.Workers > 0 {
		c.Workers = overlay.Workers
	}
	if overlay.MaxFetchSize != "" {
		c.MaxFetchSize = overlay.MaxFetchSize
	}
	if overlay.FetchTimeoutMins > 0 {
		c.FetchTimeoutMins = overlay.FetchTimeoutMins
	}
}

// MaxFetchSizeBytes returns the fetch size ceiling in bytes.
func (c *Config) MaxFetchSizeBytes() int64 {
	return c.maxFetchSizeBytes
}

// FetchTimeout returns the remote fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMins) * time.Minute
}

func (c *Config) loadDefaults() {
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.DefaultBatchSize == 0 {
		c.DefaultBatchSize = 20
	}
	if c.Workers == 0 {
		c.Workers = 4
	}
	if c.MaxFetchSize == "" {
		c.MaxFetchSize = "512MB"
	}
	if c.FetchTimeoutMins == 0 {
		c.FetchTimeoutMins = 10
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.UploadDir != "" {
		if v := os.Getenv(env.UploadDir); v != "" {
			c.UploadDir = v
		}
	}
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				c.Workers = n
			}
		}
	}
}

func (c *Config) validate() error {
	size, err := formatting.ParseBytes(c.MaxFetchSize)
	if err != nil {
		return fmt.Errorf("invalid max fetch size: %w", err)
	}
	c.maxFetchSizeBytes = size
	return nil
}
