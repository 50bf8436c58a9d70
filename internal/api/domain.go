package api

import (
	"fmt"

	"github.com/pyqvault/pyqvault/internal/auth"
	"github.com/pyqvault/pyqvault/internal/classifier"
	"github.com/pyqvault/pyqvault/internal/config"
	"github.com/pyqvault/pyqvault/internal/ingest"
	"github.com/pyqvault/pyqvault/internal/jobs"
	"github.com/pyqvault/pyqvault/internal/papers"
)

// Domain wires the domain systems together over the shared infrastructure.
type Domain struct {
	Papers     papers.System
	Jobs       jobs.System
	Auth       auth.System
	Classifier classifier.System
	Scanner    *ingest.Scanner
	Driver     *ingest.Driver
	Fetcher    *ingest.Fetcher
}

// NewDomain builds the domain systems and registers the lifecycle-aware ones
// with the coordinator.
func NewDomain(cfg *config.Config, rt *Runtime) (*Domain, error) {
	classify, err := classifier.New(&cfg.Classifier, rt.Logger)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}

	jobSystem := jobs.New(rt.Database, rt.Logger)
	paperSystem := papers.New(rt.Database, rt.Storage, rt.Logger)

	authSystem := auth.New(&cfg.Auth, rt.Database, rt.Logger)
	if err := authSystem.Start(rt.Lifecycle); err != nil {
		return nil, fmt.Errorf("auth start: %w", err)
	}

	scanner := ingest.NewScanner(cfg.Ingest.UploadDir, rt.Logger)
	driver := ingest.NewDriver(&cfg.Ingest, jobSystem, paperSystem, rt.Storage, classify, scanner, rt.Logger)

	fetcher := ingest.NewFetcher(&cfg.Ingest, jobSystem, rt.Logger)
	if err := fetcher.Start(rt.Lifecycle); err != nil {
		return nil, fmt.Errorf("fetcher start: %w", err)
	}

	return &Domain{
		Papers:     paperSystem,
		Jobs:       jobSystem,
		Auth:       authSystem,
		Classifier: classify,
		Scanner:    scanner,
		Driver:     driver,
		Fetcher:    fetcher,
	}, nil
}
