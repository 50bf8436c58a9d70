package auth

import (
	"fmt"
	"os"
	"time"
)

// Config holds admin authentication settings. TokenSecret has no default and
// must be provided through configuration or environment.
type Config struct {
	TokenSecret      string `toml:"token_secret"`
	TokenTTLHours    int    `toml:"token_ttl_hours"`
	AdminUsername    string `toml:"admin_username"`
	AdminPassword    string `toml:"-"`
	MaxLoginAttempts int    `toml:"max_login_attempts"`
	LoginWindowMins  int    `toml:"login_window_minutes"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	TokenSecret   string
	AdminUsername string
	AdminPassword string
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
	if overlay.TokenSecret != "" {
		c.TokenSecret = overlay.TokenSecret
	}
	if overlay.TokenTTLHours > 0 {
		c.TokenTTLHours = overlay.TokenTTLHours
	}
	if overlay.AdminUsername != "" {
		c.AdminUsername = overlay.AdminUsername
	}
	if overlay.MaxLoginAttempts > 0 {
		c.MaxLoginAttempts = overlay.MaxLoginAttempts
	}
	if overlay.LoginWindowMins > 0 {
		c.LoginWindowMins = overlay.LoginWindowMins
	}
}

// TokenTTL returns the token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// LoginWindow returns the rate limit window as a duration.
func (c *Config) LoginWindow() time.Duration {
	return time.Duration(c.LoginWindowMins) * time.Minute
}

func (c *Config) loadDefaults() {
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 24
	}
	if c.AdminUsername == "" {
		c.AdminUsername = "admin"
	}
	if c.MaxLoginAttempts == 0 {
		c.MaxLoginAttempts = 5
	}
	if c.LoginWindowMins == 0 {
		c.LoginWindowMins = 15
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.TokenSecret != "" {
		if v := os.Getenv(env.TokenSecret); v != "" {
			c.TokenSecret = v
		}
	}
	if env.AdminUsername != "" {
		if v := os.Getenv(env.AdminUsername); v != "" {
			c.AdminUsername = v
		}
	}
	if env.AdminPassword != "" {
		if v := os.Getenv(env.AdminPassword); v != "" {
			c.AdminPassword = v
		}
	}
}

func (c *Config) validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("auth token secret is required")
	}
	if len(c.TokenSecret) < 32 {
		return fmt.Errorf("auth token secret must be at least 32 characters, got %d", len(c.TokenSecret))
	}
	return nil
}
