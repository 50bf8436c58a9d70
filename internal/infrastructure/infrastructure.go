// Package infrastructure assembles the shared subsystems every domain builds on.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/pyqvault/pyqvault/internal/config"
	"github.com/pyqvault/pyqvault/pkg/database"
	"github.com/pyqvault/pyqvault/pkg/lifecycle"
	"github.com/pyqvault/pyqvault/pkg/storage"
)

// Infrastructure bundles the lifecycle coordinator, logger, database, and
// blob storage shared across domain systems.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
}

// New builds the infrastructure from configuration and registers each
// subsystem with the lifecycle coordinator.
func New(cfg *config.Config, logger *slog.Logger) (*Infrastructure, error) {
	lc := lifecycle.New()

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := db.Start(lc); err != nil {
		return nil, fmt.Errorf("database start: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if err := store.Start(lc); err != nil {
		return nil, fmt.Errorf("storage start: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
	}, nil
}
