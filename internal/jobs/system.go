package jobs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pyqvault/pyqvault/pkg/database"
	"github.com/pyqvault/pyqvault/pkg/pagination"
	"github.com/pyqvault/pyqvault/pkg/repository"
)

// System manages the ingestion job lifecycle. Status changes go through the
// state machine in status.go; illegal transitions return ErrInvalidTransition.
type System interface {
	// Create registers a new job.
	Create(ctx context.Context, job NewJob) (Job, error)
	// Find returns the job with the given id.
	Find(ctx context.Context, id uuid.UUID) (Job, error)
	// List returns a page of jobs, optionally filtered by status.
	List(ctx context.Context, req pagination.PageRequest, status *Status) (pagination.PageResult[Job], error)
	// SetStatus transitions the job to the given status.
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
	// SetFetched records the downloaded archive path and returns the job to UPLOADED.
	SetFetched(ctx context.Context, id uuid.UUID, archivePath string) error
	// SetExtracted records the extraction directory and total document count.
	SetExtracted(ctx context.Context, id uuid.UUID, extractPath string, total int) error
	// SetProgress atomically advances the processed count and status under a row
	// lock, validating the transition against the current persisted status.
	SetProgress(ctx context.Context, id uuid.UUID, processed int, status Status) (Job, error)
	// MarkFailed transitions the job to FAILED with the given reason.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

type system struct {
	db     database.System
	logger *slog.Logger
}

// New creates a jobs system backed by the given database.
func New(db database.System, logger *slog.Logger) System {
	return &system{
		db:     db,
		logger: logger.With("system", "jobs"),
	}
}

func (s *system) Create(ctx context.Context, job NewJob) (Job, error) {
	if !job.Status.Valid() {
		return Job{}, fmt.Errorf("%w: %q", ErrInvalidTransition, job.Status)
	}

	created, err := insertJob(ctx, s.db.Connection(), job)
	if err != nil {
		return Job{}, err
	}

	s.logger.Info("job created",
		"id", created.ID,
		"filename", created.Filename,
		"status", created.Status,
	)
	return created, nil
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (Job, error) {
	return findJob(ctx, s.db.Connection(), id)
}

func (s *system) List(ctx context.Context, req pagination.PageRequest, status *Status) (pagination.PageResult[Job], error) {
	return listJobs(ctx, s.db.Connection(), req, status)
}

func (s *system) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := s.transition(ctx, id, status, func(tx *sql.Tx, job Job) (Job, error) {
		if err := updateStatus(ctx, tx, id, status); err != nil {
			return Job{}, err
		}
		job.Status = status
		return job, nil
	})
	return err
}

func (s *system) SetFetched(ctx context.Context, id uuid.UUID, archivePath string) error {
	_, err := s.transition(ctx, id, StatusUploaded, func(tx *sql.Tx, job Job) (Job, error) {
		if err := updateFetched(ctx, tx, id, archivePath); err != nil {
			return Job{}, err
		}
		job.ArchivePath = archivePath
		job.Status = StatusUploaded
		return job, nil
	})
	return err
}

func (s *system) SetExtracted(ctx context.Context, id uuid.UUID, extractPath string, total int) error {
	if err := updateExtracted(ctx, s.db.Connection(), id, extractPath, total); err != nil {
		return err
	}

	s.logger.Info("job archive extracted", "id", id, "total_documents", total)
	return nil
}

func (s *system) SetProgress(ctx context.Context, id uuid.UUID, processed int, status Status) (Job, error) {
	return s.transition(ctx, id, status, func(tx *sql.Tx, job Job) (Job, error) {
		if processed < job.ProcessedDocuments {
			return Job{}, fmt.Errorf("%w: progress cannot move backwards", ErrInvalidTransition)
		}
		return updateProgress(ctx, tx, id, processed, status)
	})
}

func (s *system) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := s.transition(ctx, id, StatusFailed, func(tx *sql.Tx, job Job) (Job, error) {
		if err := updateFailed(ctx, tx, id, reason); err != nil {
			return Job{}, err
		}
		job.Status = StatusFailed
		return job, nil
	})
	if err != nil {
		return err
	}

	s.logger.Warn("job failed", "id", id, "reason", reason)
	return nil
}

// transition locks the job row, validates the status change, and applies fn
// within the same transaction.
func (s *system) transition(
	ctx context.Context,
	id uuid.UUID,
	next Status,
	fn func(tx *sql.Tx, job Job) (Job, error),
) (Job, error) {
	return repository.WithTx(ctx, s.db.Connection(), func(tx *sql.Tx) (Job, error) {
		job, err := lockJob(ctx, tx, id)
		if err != nil {
			return Job{}, err
		}

		if !job.Status.CanTransition(next) {
			return Job{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, next)
		}

		return fn(tx, job)
	})
}
