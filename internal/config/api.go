package config

import (
	"fmt"
	"os"

	"github.com/pyqvault/pyqvault/pkg/formatting"
	"github.com/pyqvault/pyqvault/pkg/middleware"
	"github.com/pyqvault/pyqvault/pkg/pagination"
)

// APIConfig holds settings for the public API surface.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`

	maxUploadSizeBytes int64
}

// APIEnv maps config fields to environment variable names.
type APIEnv struct {
	BasePath      string
	MaxUploadSize string
	CORS          *middleware.CORSEnv
	Pagination    *pagination.ConfigEnv
}

// MaxUploadSizeBytes returns the upload ceiling in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	return c.maxUploadSizeBytes
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *APIConfig) Finalize(env *APIEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}

	var corsEnv *middleware.CORSEnv
	var paginationEnv *pagination.ConfigEnv
	if env != nil {
		corsEnv = env.CORS
		paginationEnv = env.Pagination
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}

	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "256MB"
	}
}

func (c *APIConfig) loadEnv(env *APIEnv) {
	if env.BasePath != "" {
		if v := os.Getenv(env.BasePath); v != "" {
			c.BasePath = v
		}
	}
	if env.MaxUploadSize != "" {
		if v := os.Getenv(env.MaxUploadSize); v != "" {
			c.MaxUploadSize = v
		}
	}
}

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	c.maxUploadSizeBytes = size
	return nil
}
