// Package config loads and finalizes application configuration from TOML
// files with environment variable overrides.
//
// Loading order: config.toml, then config.<env>.toml when PYQVAULT_ENV is
// set, then environment variables. Later sources win.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/pyqvault/pyqvault/internal/auth"
	"github.com/pyqvault/pyqvault/internal/classifier"
	"github.com/pyqvault/pyqvault/internal/ingest"
	"github.com/pyqvault/pyqvault/pkg/database"
	"github.com/pyqvault/pyqvault/pkg/middleware"
	"github.com/pyqvault/pyqvault/pkg/pagination"
	"github.com/pyqvault/pyqvault/pkg/storage"
)

// Config is the root application configuration.
type Config struct {
	Version         string            `toml:"version"`
	ShutdownTimeout string            `toml:"shutdown_timeout"`
	Server          ServerConfig      `toml:"server"`
	Database        database.Config   `toml:"database"`
	Storage         storage.Config    `toml:"storage"`
	API             APIConfig         `toml:"api"`
	Auth            auth.Config       `toml:"auth"`
	Ingest          ingest.Config     `toml:"ingest"`
	Classifier      classifier.Config `toml:"classifier"`
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base configuration file, applies the environment overlay if
// present, and finalizes every section.
func Load(dir string) (*Config, error) {
	cfg := &Config{}

	if err := readInto(filepath.Join(dir, "config.toml"), cfg); err != nil {
		return nil, err
	}

	if env := os.Getenv("PYQVAULT_ENV"); env != "" {
		overlayPath := filepath.Join(dir, fmt.Sprintf("config.%s.toml", env))
		if _, err := os.Stat(overlayPath); err == nil {
			overlay := &Config{}
			if err := readInto(overlayPath, overlay); err != nil {
				return nil, err
			}
			cfg.merge(overlay)
		}
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readInto(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) merge(overlay *Config) {
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Ingest.Merge(&overlay.Ingest)
	c.Classifier.Merge(&overlay.Classifier)
}

func (c *Config) finalize() error {
	if c.Version == "" {
		c.Version = "dev"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}

	if err := c.Server.Finalize(&ServerEnv{
		Host: "PYQVAULT_SERVER_HOST",
		Port: "PYQVAULT_SERVER_PORT",
	}); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Database.Finalize(&database.Env{
		Host:     "PYQVAULT_DB_HOST",
		Port:     "PYQVAULT_DB_PORT",
		Name:     "PYQVAULT_DB_NAME",
		User:     "PYQVAULT_DB_USER",
		Password: "PYQVAULT_DB_PASSWORD",
		SSLMode:  "PYQVAULT_DB_SSL_MODE",
	}); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Storage.Finalize(&storage.Env{
		ContainerName:    "PYQVAULT_STORAGE_CONTAINER",
		ConnectionString: "PYQVAULT_STORAGE_CONNECTION_STRING",
	}); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := c.API.Finalize(&APIEnv{
		BasePath:      "PYQVAULT_API_BASE_PATH",
		MaxUploadSize: "PYQVAULT_API_MAX_UPLOAD_SIZE",
		CORS: &middleware.CORSEnv{
			Enabled: "PYQVAULT_CORS_ENABLED",
			Origins: "PYQVAULT_CORS_ORIGINS",
		},
		Pagination: &pagination.ConfigEnv{
			DefaultPageSize: "PYQVAULT_PAGE_SIZE",
			MaxPageSize:     "PYQVAULT_MAX_PAGE_SIZE",
		},
	}); err != nil {
		return fmt.Errorf("api config: %w", err)
	}

	if err := c.Auth.Finalize(&auth.Env{
		TokenSecret:   "PYQVAULT_AUTH_SECRET",
		AdminUsername: "ADMIN_USERNAME",
		AdminPassword: "ADMIN_PASSWORD",
	}); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Ingest.Finalize(&ingest.Env{
		UploadDir: "PYQVAULT_UPLOAD_DIR",
		Workers:   "PYQVAULT_INGEST_WORKERS",
	}); err != nil {
		return fmt.Errorf("ingest config: %w", err)
	}

	if err := c.Classifier.Finalize(); err != nil {
		return fmt.Errorf("classifier config: %w", err)
	}

	return nil
}
