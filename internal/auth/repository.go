package auth

import (
	"context"
	"time"

	"github.com/pyqvault/pyqvault/pkg/repository"
)

type adminUser struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

func scanAdmin(s repository.Scanner) (adminUser, error) {
	var user adminUser
	err := s.Scan(&user.Username, &user.PasswordHash, &user.CreatedAt, &user.LastLogin)
	return user, err
}

func findAdmin(ctx context.Context, q repository.Querier, username string) (adminUser, error) {
	user, err := repository.QueryOne(ctx, q,
		`SELECT username, password_hash, created_at, last_login
		 FROM public.admin_users
		 WHERE username = $1`,
		[]any{username}, scanAdmin,
	)
	return user, repository.MapError(err, ErrInvalidCredentials, ErrInvalidCredentials)
}

// insertAdmin creates the admin account if absent and reports whether a row
// was actually inserted.
func insertAdmin(ctx context.Context, e repository.Executor, username, passwordHash string) (bool, error) {
	result, err := e.ExecContext(ctx,
		`INSERT INTO public.admin_users (username, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (username) DO NOTHING`,
		username, passwordHash,
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func updatePassword(ctx context.Context, e repository.Executor, username, passwordHash string) error {
	err := repository.ExecExpectOne(ctx, e,
		`UPDATE public.admin_users SET password_hash = $2 WHERE username = $1`,
		username, passwordHash,
	)
	return repository.MapError(err, ErrInvalidCredentials, ErrInvalidCredentials)
}

func touchLastLogin(ctx context.Context, e repository.Executor, username string) error {
	err := repository.ExecExpectOne(ctx, e,
		`UPDATE public.admin_users SET last_login = now() WHERE username = $1`,
		username,
	)
	return repository.MapError(err, ErrInvalidCredentials, ErrInvalidCredentials)
}
