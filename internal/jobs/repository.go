package jobs

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/pyqvault/pyqvault/pkg/pagination"
	"github.com/pyqvault/pyqvault/pkg/query"
	"github.com/pyqvault/pyqvault/pkg/repository"
)

const insertJobQuery = `
INSERT INTO public.ingestion_jobs (id, filename, archive_path, source_url, exam_type, exam_year, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, filename, archive_path, source_url, extract_path, exam_type, exam_year,
          total_documents, processed_documents, status, failure_reason, created_at, updated_at`

func insertJob(ctx context.Context, q repository.Querier, job NewJob) (Job, error) {
	args := []any{
		uuid.New(),
		job.Filename,
		job.ArchivePath,
		job.SourceURL,
		job.ExamType,
		job.ExamYear,
		job.Status,
	}
	result, err := repository.QueryOne(ctx, q, insertJobQuery, args, scanJob)
	return result, repository.MapError(err, ErrNotFound, ErrNotFound)
}

func findJob(ctx context.Context, q repository.Querier, id uuid.UUID) (Job, error) {
	builder := query.NewBuilder(jobProjection())
	querySQL, args := builder.BuildSingle("id", id)

	job, err := repository.QueryOne(ctx, q, querySQL, args, scanJob)
	return job, repository.MapError(err, ErrNotFound, ErrNotFound)
}

const lockJobQuery = `
SELECT id, filename, archive_path, source_url, extract_path, exam_type, exam_year,
       total_documents, processed_documents, status, failure_reason, created_at, updated_at
FROM public.ingestion_jobs
WHERE id = $1
FOR UPDATE`

func lockJob(ctx context.Context, tx *sql.Tx, id uuid.UUID) (Job, error) {
	job, err := repository.QueryOne(ctx, tx, lockJobQuery, []any{id}, scanJob)
	return job, repository.MapError(err, ErrNotFound, ErrNotFound)
}

func listJobs(ctx context.Context, q repository.Querier, req pagination.PageRequest, status *Status) (pagination.PageResult[Job], error) {
	var zero pagination.PageResult[Job]

	builder := query.NewBuilder(jobProjection(), query.SortField{Field: "createdAt", Descending: true}).
		WhereSearch(req.Search, "filename", "examType").
		OrderByFields(req.Sort)

	if status != nil {
		builder.WhereEquals("status", string(*status))
	}

	countSQL, countArgs := builder.BuildCount()
	var total int
	if err := q.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return zero, err
	}

	pageSQL, pageArgs := builder.BuildPage(req.Page, req.PageSize)
	data, err := repository.QueryMany(ctx, q, pageSQL, pageArgs, scanJob)
	if err != nil {
		return zero, err
	}

	return pagination.NewPageResult(data, total, req.Page, req.PageSize), nil
}

func updateStatus(ctx context.Context, e repository.Executor, id uuid.UUID, status Status) error {
	err := repository.ExecExpectOne(ctx, e,
		`UPDATE public.ingestion_jobs SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	return repository.MapError(err, ErrNotFound, ErrNotFound)
}

func updateFetched(ctx context.Context, e repository.Executor, id uuid.UUID, archivePath string) error {
	err := repository.ExecExpectOne(ctx, e,
		`UPDATE public.ingestion_jobs
		 SET archive_path = $2, status = $3, updated_at = now()
		 WHERE id = $1`,
		id, archivePath, StatusUploaded,
	)
	return repository.MapError(err, ErrNotFound, ErrNotFound)
}

func updateExtracted(ctx context.Context, e repository.Executor, id uuid.UUID, extractPath string, total int) error {
	err := repository.ExecExpectOne(ctx, e,
		`UPDATE public.ingestion_jobs
		 SET extract_path = $2, total_documents = $3, updated_at = now()
		 WHERE id = $1`,
		id, extractPath, total,
	)
	return repository.MapError(err, ErrNotFound, ErrNotFound)
}

const updateProgressQuery = `
UPDATE public.ingestion_jobs
SET processed_documents = $2, status = $3, updated_at = now()
WHERE id = $1
RETURNING id, filename, archive_path, source_url, extract_path, exam_type, exam_year,
          total_documents, processed_documents, status, failure_reason, created_at, updated_at`

func updateProgress(ctx context.Context, q repository.Querier, id uuid.UUID, processed int, status Status) (Job, error) {
	job, err := repository.QueryOne(ctx, q, updateProgressQuery, []any{id, processed, status}, scanJob)
	return job, repository.MapError(err, ErrNotFound, ErrNotFound)
}

func updateFailed(ctx context.Context, e repository.Executor, id uuid.UUID, reason string) error {
	err := repository.ExecExpectOne(ctx, e,
		`UPDATE public.ingestion_jobs
		 SET status = $2, failure_reason = $3, updated_at = now()
		 WHERE id = $1`,
		id, StatusFailed, reason,
	)
	return repository.MapError(err, ErrNotFound, ErrNotFound)
}
