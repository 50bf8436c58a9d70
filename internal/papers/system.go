package papers

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pyqvault/pyqvault/pkg/database"
	"github.com/pyqvault/pyqvault/pkg/pagination"
	"github.com/pyqvault/pyqvault/pkg/storage"
)

// System manages the paper catalog. Duplicate papers are permitted; the same
// subject can legitimately appear across multiple archives and sessions.
type System interface {
	// Insert adds a classified paper to the catalog.
	Insert(ctx context.Context, paper NewPaper) (Paper, error)
	// Find returns the paper with the given id.
	Find(ctx context.Context, id uuid.UUID) (Paper, error)
	// List returns a page of papers narrowed by the given facets.
	List(ctx context.Context, req pagination.PageRequest, facets Facets) (pagination.PageResult[Paper], error)
	// Sessions returns the distinct exam sessions in the catalog.
	Sessions(ctx context.Context) ([]Session, error)
	// Branches returns the distinct branches matching the given facets.
	Branches(ctx context.Context, facets Facets) ([]string, error)
	// Subjects returns the distinct subjects matching the given facets.
	Subjects(ctx context.Context, facets Facets) ([]Subject, error)
	// FindByFacets returns all papers matching the given facets, unpaginated.
	FindByFacets(ctx context.Context, facets Facets) ([]Paper, error)
	// Open returns a stream of the stored PDF for the given paper.
	Open(ctx context.Context, id uuid.UUID) (Paper, io.ReadCloser, error)
}

type system struct {
	db     database.System
	store  storage.System
	logger *slog.Logger
}

// New creates a papers system backed by the given database and blob storage.
func New(db database.System, store storage.System, logger *slog.Logger) System {
	return &system{
		db:     db,
		store:  store,
		logger: logger.With("system", "papers"),
	}
}

func (s *system) Insert(ctx context.Context, paper NewPaper) (Paper, error) {
	inserted, err := insertPaper(ctx, s.db.Connection(), paper)
	if err != nil {
		return Paper{}, err
	}

	s.logger.Info("paper cataloged",
		"id", inserted.ID,
		"subject_code", inserted.SubjectCode,
		"branch", inserted.Branch,
		"semester", inserted.Semester,
	)
	return inserted, nil
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (Paper, error) {
	return findPaper(ctx, s.db.Connection(), id)
}

func (s *system) List(ctx context.Context, req pagination.PageRequest, facets Facets) (pagination.PageResult[Paper], error) {
	return listPapers(ctx, s.db.Connection(), req, facets)
}

func (s *system) Sessions(ctx context.Context) ([]Session, error) {
	return listSessions(ctx, s.db.Connection())
}

func (s *system) Branches(ctx context.Context, facets Facets) ([]string, error) {
	return listBranches(ctx, s.db.Connection(), facets)
}

func (s *system) Subjects(ctx context.Context, facets Facets) ([]Subject, error) {
	return listSubjects(ctx, s.db.Connection(), facets)
}

func (s *system) FindByFacets(ctx context.Context, facets Facets) ([]Paper, error) {
	return findByFacets(ctx, s.db.Connection(), facets)
}

func (s *system) Open(ctx context.Context, id uuid.UUID) (Paper, io.ReadCloser, error) {
	paper, err := findPaper(ctx, s.db.Connection(), id)
	if err != nil {
		return Paper{}, nil, err
	}

	reader, err := s.store.Download(ctx, paper.StorageKey)
	if err != nil {
		return Paper{}, nil, err
	}

	return paper, reader, nil
}
