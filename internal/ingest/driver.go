package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"golang.org/x/sync/errgroup"

	"github.com/pyqvault/pyqvault/internal/classifier"
	"github.com/pyqvault/pyqvault/internal/jobs"
	"github.com/pyqvault/pyqvault/internal/papers"
	"github.com/pyqvault/pyqvault/pkg/storage"
)

// Progress reports how far a job has advanced through its archive.
type Progress struct {
	JobID      uuid.UUID   `json:"job_id"`
	Processed  int         `json:"processed"`
	Total      int         `json:"total"`
	Percentage float64     `json:"percentage"`
	Status     jobs.Status `json:"status"`
}

// Driver advances ingestion jobs one batch at a time. Each batch classifies
// a slice of documents, uploads the classified ones, and records progress.
// Individual document failures are logged and skipped; they never stall the
// batch, so repeated calls always move a job toward completion.
type Driver struct {
	jobs     jobs.System
	papers   papers.System
	store    storage.System
	classify classifier.System
	scanner  *Scanner
	config   *Config
	logger   *slog.Logger
}

// NewDriver creates a batch processing driver.
func NewDriver(
	cfg *Config,
	jobSystem jobs.System,
	paperSystem papers.System,
	store storage.System,
	classify classifier.System,
	scanner *Scanner,
	logger *slog.Logger,
) *Driver {
	return &Driver{
		jobs:     jobSystem,
		papers:   paperSystem,
		store:    store,
		classify: classify,
		scanner:  scanner,
		config:   cfg,
		logger:   logger.With("system", "driver"),
	}
}

// Advance processes the next batch of the given job. Calling Advance on a
// completed job reports its final progress without side effects. The first
// call for a job extracts the archive and records the document count.
func (d *Driver) Advance(ctx context.Context, jobID uuid.UUID, batchSize int) (Progress, error) {
	job, err := d.jobs.Find(ctx, jobID)
	if err != nil {
		return Progress{}, err
	}

	switch job.Status {
	case jobs.StatusFailed:
		reason := "unknown"
		if job.FailureReason != nil {
			reason = *job.FailureReason
		}
		return Progress{}, fmt.Errorf("%w: %s", jobs.ErrJobFailed, reason)
	case jobs.StatusCompleted:
		return progressOf(job), nil
	case jobs.StatusFetching:
		return Progress{}, fmt.Errorf("%w: archive is still downloading", jobs.ErrInvalidTransition)
	}

	workDir, documents, err := d.resolveDocuments(ctx, &job)
	if err != nil {
		return Progress{}, err
	}

	if batchSize <= 0 {
		batchSize = d.config.DefaultBatchSize
	}

	start := job.ProcessedDocuments
	end := min(start+batchSize, len(documents))
	if start > end {
		start = end
	}
	batch := documents[start:end]

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.config.Workers)
	for _, doc := range batch {
		group.Go(func() error {
			d.processDocument(groupCtx, job, workDir, doc)
			return nil
		})
	}
	group.Wait()

	processed := start + len(batch)
	status := jobs.StatusProcessing
	if processed >= job.TotalDocuments {
		status = jobs.StatusCompleted
	}

	updated, err := d.jobs.SetProgress(ctx, jobID, processed, status)
	if err != nil {
		return Progress{}, err
	}

	if updated.Status == jobs.StatusCompleted {
		if err := d.scanner.Cleanup(workDir, job.ArchivePath); err != nil {
			d.logger.Warn("job cleanup failed", "job_id", jobID, "error", err)
		}
		d.logger.Info("job completed", "job_id", jobID, "total", updated.TotalDocuments)
	}

	return progressOf(updated), nil
}

// resolveDocuments extracts the archive on first touch, otherwise re-reads
// the manifest recorded at extraction. A missing work directory (for example
// after a host restart with ephemeral storage) triggers re-extraction.
func (d *Driver) resolveDocuments(ctx context.Context, job *jobs.Job) (string, []string, error) {
	if job.ExtractPath != nil && dirExists(*job.ExtractPath) {
		documents, err := d.scanner.Documents(*job.ExtractPath)
		if err != nil {
			return "", nil, err
		}
		return *job.ExtractPath, documents, nil
	}

	workDir, documents, err := d.scanner.Extract(job.ArchivePath, job.ExamType, job.ExamYear)
	if err != nil {
		// Only an unreadable archive is unrecoverable. Transient IO errors
		// leave the job untouched so a later Advance can retry extraction.
		if errors.Is(err, ErrCorruptArchive) {
			d.fail(ctx, job.ID, err)
		}
		return "", nil, err
	}

	if len(documents) == 0 {
		d.fail(ctx, job.ID, ErrNoDocuments)
		return "", nil, ErrNoDocuments
	}

	if err := d.jobs.SetExtracted(ctx, job.ID, workDir, len(documents)); err != nil {
		return "", nil, err
	}

	job.ExtractPath = &workDir
	job.TotalDocuments = len(documents)
	return workDir, documents, nil
}

// processDocument classifies, measures, and uploads a single PDF. All
// failures are logged and swallowed so the batch accounting still advances
// past the document.
func (d *Driver) processDocument(ctx context.Context, job jobs.Job, workDir, doc string) {
	path := filepath.Join(workDir, filepath.FromSlash(doc))
	base := filepath.Base(path)

	document, err := d.classify.Classify(base)
	if err != nil {
		if classifier.IsRejection(err) {
			d.logger.Info("document skipped", "job_id", job.ID, "file", base, "reason", err)
		} else {
			d.logger.Error("document classification failed", "job_id", job.ID, "file", base, "error", err)
		}
		return
	}

	var pageCount *int
	if count, err := api.PageCountFile(path); err != nil {
		d.logger.Warn("page count unavailable", "job_id", job.ID, "file", base, "error", err)
	} else {
		pageCount = &count
	}

	file, err := os.Open(path)
	if err != nil {
		d.logger.Error("document open failed", "job_id", job.ID, "file", base, "error", err)
		return
	}
	defer file.Close()

	key := storageKey(job, document, base)
	locator, err := d.store.Store(ctx, key, file, "application/pdf")
	if err != nil {
		d.logger.Error("document upload failed", "job_id", job.ID, "file", base, "error", err)
		return
	}

	if _, err := d.papers.Insert(ctx, papers.NewPaper{
		Degree:      document.Degree,
		Branch:      document.Branch,
		Semester:    document.Semester,
		SubjectCode: document.SubjectCode,
		SubjectName: document.SubjectName,
		ExamType:    job.ExamType,
		ExamYear:    job.ExamYear,
		StorageKey:  locator,
		PageCount:   pageCount,
	}); err != nil {
		d.logger.Error("document catalog insert failed", "job_id", job.ID, "file", base, "error", err)
	}
}

func (d *Driver) fail(ctx context.Context, jobID uuid.UUID, cause error) {
	if err := d.jobs.MarkFailed(ctx, jobID, cause.Error()); err != nil {
		d.logger.Error("job failure record failed", "job_id", jobID, "error", err)
	}
}

func storageKey(job jobs.Job, document classifier.Document, filename string) string {
	return fmt.Sprintf("%s_%d/%s/sem%d/%s",
		strings.ToLower(job.ExamType),
		job.ExamYear,
		document.Branch,
		document.Semester,
		filename,
	)
}

func progressOf(job jobs.Job) Progress {
	percentage := 100.0
	if job.TotalDocuments > 0 {
		percentage = float64(job.ProcessedDocuments) / float64(job.TotalDocuments) * 100
	}

	return Progress{
		JobID:      job.ID,
		Processed:  job.ProcessedDocuments,
		Total:      job.TotalDocuments,
		Percentage: percentage,
		Status:     job.Status,
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
