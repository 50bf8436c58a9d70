// Package auth provides admin authentication with bcrypt password storage,
// signed session tokens, and per-address login rate limiting.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pyqvault/pyqvault/pkg/database"
	"github.com/pyqvault/pyqvault/pkg/lifecycle"
)

// System manages admin credentials and session tokens.
type System interface {
	// Start registers a startup hook that seeds the admin account.
	Start(lc *lifecycle.Coordinator) error
	// Login verifies credentials and issues a session token. The client
	// address is rate limited on failures.
	Login(ctx context.Context, addr, username, password string) (string, time.Time, error)
	// Verify validates a session token and returns its claims.
	Verify(tokenString string) (Claims, error)
	// ChangePassword rotates the password after verifying the current one.
	ChangePassword(ctx context.Context, username, current, next string) error
}

type system struct {
	db      database.System
	config  *Config
	limiter *Limiter
	logger  *slog.Logger
}

// New creates an auth system backed by the given database.
func New(cfg *Config, db database.System, logger *slog.Logger) System {
	return &system{
		db:      db,
		config:  cfg,
		limiter: NewLimiter(cfg.MaxLoginAttempts, cfg.LoginWindow()),
		logger:  logger.With("system", "auth"),
	}
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting auth system")

	lc.OnStartup(func() {
		if err := s.seedAdmin(lc.Context()); err != nil {
			s.logger.Error("admin account seeding failed", "error", err)
		}
	})

	return nil
}

func (s *system) Login(ctx context.Context, addr, username, password string) (string, time.Time, error) {
	if !s.limiter.Allow(addr) {
		s.logger.Warn("login rate limited", "addr", addr)
		return "", time.Time{}, ErrTooManyAttempts
	}

	user, err := findAdmin(ctx, s.db.Connection(), username)
	if err != nil {
		s.limiter.Record(addr)
		return "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.limiter.Record(addr)
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := IssueToken(s.config.TokenSecret, username, s.config.TokenTTL())
	if err != nil {
		return "", time.Time{}, err
	}

	s.limiter.Reset(addr)
	if err := touchLastLogin(ctx, s.db.Connection(), username); err != nil {
		s.logger.Warn("last login update failed", "username", username, "error", err)
	}

	s.logger.Info("admin logged in", "username", username)
	return token, expiresAt, nil
}

func (s *system) Verify(tokenString string) (Claims, error) {
	return ParseToken(s.config.TokenSecret, tokenString)
}

func (s *system) ChangePassword(ctx context.Context, username, current, next string) error {
	if len(next) < 8 {
		return ErrWeakPassword
	}

	user, err := findAdmin(ctx, s.db.Connection(), username)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := updatePassword(ctx, s.db.Connection(), username, string(hash)); err != nil {
		return err
	}

	s.logger.Info("admin password changed", "username", username)
	return nil
}

// seedAdmin creates the admin account if it does not exist. When no password
// is configured a random one is generated and logged once so the operator can
// log in and rotate it.
func (s *system) seedAdmin(ctx context.Context) error {
	password := s.config.AdminPassword
	generated := false

	if password == "" {
		raw := make([]byte, 16)
		if _, err := rand.Read(raw); err != nil {
			return fmt.Errorf("generate admin password: %w", err)
		}
		password = hex.EncodeToString(raw)
		generated = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	inserted, err := insertAdmin(ctx, s.db.Connection(), s.config.AdminUsername, string(hash))
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}

	switch {
	case inserted && generated:
		s.logger.Warn("generated admin password, change it after first login",
			"username", s.config.AdminUsername,
			"password", password,
		)
	case inserted:
		s.logger.Info("admin account created", "username", s.config.AdminUsername)
	default:
		s.logger.Info("admin account ready", "username", s.config.AdminUsername)
	}

	return nil
}
