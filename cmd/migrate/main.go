// Command migrate applies database migrations embedded in the binary.
package main

import (
	"embed"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	dsn := flag.String("dsn", os.Getenv("PYQVAULT_DB_DSN"), "postgres connection string")
	up := flag.Bool("up", false, "apply all pending migrations")
	down := flag.Bool("down", false, "roll back one migration")
	steps := flag.Int("steps", 0, "apply a relative number of migrations")
	version := flag.Bool("version", false, "print the current migration version")
	force := flag.Int("force", -1, "force the migration version without running migrations")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *dsn == "" {
		logger.Error("dsn is required, set -dsn or PYQVAULT_DB_DSN")
		os.Exit(1)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		logger.Error("migration source failed", "error", err)
		os.Exit(1)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, *dsn)
	if err != nil {
		logger.Error("migration setup failed", "error", err)
		os.Exit(1)
	}
	defer m.Close()

	switch {
	case *version:
		current, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			logger.Error("version lookup failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migration version", "version", current, "dirty", dirty)

	case *force >= 0:
		if err := m.Force(*force); err != nil {
			logger.Error("force failed", "error", err)
			os.Exit(1)
		}
		logger.Info("version forced", "version", *force)

	case *steps != 0:
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("steps failed", "error", err)
			os.Exit(1)
		}
		logger.Info("steps applied", "steps", *steps)

	case *up:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("migration up failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migrations applied")

	case *down:
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Error("migration down failed", "error", err)
			os.Exit(1)
		}
		logger.Info("migration rolled back")

	default:
		flag.Usage()
		os.Exit(2)
	}
}
