package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/pyqvault/pyqvault/internal/classifier"
	"github.com/pyqvault/pyqvault/internal/ingest"
	"github.com/pyqvault/pyqvault/internal/jobs"
	"github.com/pyqvault/pyqvault/internal/papers"
	"github.com/pyqvault/pyqvault/pkg/lifecycle"
	"github.com/pyqvault/pyqvault/pkg/pagination"
)

type fakeJobs struct {
	mu       sync.Mutex
	job      jobs.Job
	progress []jobs.Status
	failed   string
}

func (f *fakeJobs) Create(ctx context.Context, job jobs.NewJob) (jobs.Job, error) {
	return jobs.Job{}, nil
}

func (f *fakeJobs) Find(ctx context.Context, id uuid.UUID) (jobs.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.job, nil
}

func (f *fakeJobs) List(ctx context.Context, req pagination.PageRequest, status *jobs.Status) (pagination.PageResult[jobs.Job], error) {
	return pagination.PageResult[jobs.Job]{}, nil
}

func (f *fakeJobs) SetStatus(ctx context.Context, id uuid.UUID, status jobs.Status) error {
	return nil
}

func (f *fakeJobs) SetFetched(ctx context.Context, id uuid.UUID, archivePath string) error {
	return nil
}

func (f *fakeJobs) SetExtracted(ctx context.Context, id uuid.UUID, extractPath string, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.job.ExtractPath = &extractPath
	f.job.TotalDocuments = total
	return nil
}

func (f *fakeJobs) SetProgress(ctx context.Context, id uuid.UUID, processed int, status jobs.Status) (jobs.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.job.Status.CanTransition(status) {
		return jobs.Job{}, fmt.Errorf("%w: %s -> %s", jobs.ErrInvalidTransition, f.job.Status, status)
	}
	f.job.ProcessedDocuments = processed
	f.job.Status = status
	f.progress = append(f.progress, status)
	return f.job, nil
}

func (f *fakeJobs) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.job.Status = jobs.StatusFailed
	f.job.FailureReason = &reason
	f.failed = reason
	return nil
}

type fakePapers struct {
	mu       sync.Mutex
	inserted []papers.NewPaper
}

func (f *fakePapers) Insert(ctx context.Context, paper papers.NewPaper) (papers.Paper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, paper)
	return papers.Paper{ID: uuid.New()}, nil
}

func (f *fakePapers) Find(ctx context.Context, id uuid.UUID) (papers.Paper, error) {
	return papers.Paper{}, papers.ErrNotFound
}

func (f *fakePapers) List(ctx context.Context, req pagination.PageRequest, facets papers.Facets) (pagination.PageResult[papers.Paper], error) {
	return pagination.PageResult[papers.Paper]{}, nil
}

func (f *fakePapers) Sessions(ctx context.Context) ([]papers.Session, error) { return nil, nil }

func (f *fakePapers) Branches(ctx context.Context, facets papers.Facets) ([]string, error) {
	return nil, nil
}

func (f *fakePapers) Subjects(ctx context.Context, facets papers.Facets) ([]papers.Subject, error) {
	return nil, nil
}

func (f *fakePapers) FindByFacets(ctx context.Context, facets papers.Facets) ([]papers.Paper, error) {
	return nil, nil
}

func (f *fakePapers) Open(ctx context.Context, id uuid.UUID) (papers.Paper, io.ReadCloser, error) {
	return papers.Paper{}, nil, papers.ErrNotFound
}

func (f *fakePapers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeStorage struct {
	mu   sync.Mutex
	keys []string
}

func (f *fakeStorage) Store(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return key, nil
}

func (f *fakeStorage) Download(ctx context.Context, locator string) (io.ReadCloser, error) {
	return nil, nil
}

func (f *fakeStorage) Exists(ctx context.Context, locator string) (bool, error) { return false, nil }

func (f *fakeStorage) Delete(ctx context.Context, locator string) error { return nil }

func (f *fakeStorage) Start(lc *lifecycle.Coordinator) error { return nil }

func newTestClassifier(t *testing.T) classifier.System {
	t.Helper()

	cfg := &classifier.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize classifier config: %v", err)
	}

	c, err := classifier.New(cfg, newLogger())
	if err != nil {
		t.Fatalf("new classifier: %v", err)
	}
	return c
}

func newTestDriver(t *testing.T, dir string, jobSystem *fakeJobs, paperSystem *fakePapers) *ingest.Driver {
	t.Helper()

	cfg := &ingest.Config{UploadDir: dir, Workers: 4}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize ingest config: %v", err)
	}

	scanner := ingest.NewScanner(dir, newLogger())
	return ingest.NewDriver(cfg, jobSystem, paperSystem, &fakeStorage{}, newTestClassifier(t), scanner, newLogger())
}

func paperEntries(count int) map[string]string {
	entries := make(map[string]string, count)
	for i := range count {
		name := fmt.Sprintf("B.Tech Computer Science and Engineering Semester-III Subject - PCC%03d - Data Structures %d.pdf", i, i)
		entries[name] = "pdf"
	}
	return entries
}

func TestDriverAdvanceToCompletion(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "papers.zip")
	writeArchive(t, archive, paperEntries(37))

	jobSystem := &fakeJobs{job: jobs.Job{
		ID:          uuid.New(),
		Filename:    "papers.zip",
		ArchivePath: archive,
		ExamType:    "summer",
		ExamYear:    2024,
		Status:      jobs.StatusUploaded,
	}}
	paperSystem := &fakePapers{}
	driver := newTestDriver(t, dir, jobSystem, paperSystem)

	ctx := context.Background()
	jobID := jobSystem.job.ID

	steps := []struct {
		processed int
		status    jobs.Status
	}{
		{15, jobs.StatusProcessing},
		{30, jobs.StatusProcessing},
		{37, jobs.StatusCompleted},
	}

	for i, step := range steps {
		progress, err := driver.Advance(ctx, jobID, 15)
		if err != nil {
			t.Fatalf("advance %d: %v", i+1, err)
		}
		if progress.Processed != step.processed {
			t.Errorf("advance %d: processed = %d, want %d", i+1, progress.Processed, step.processed)
		}
		if progress.Total != 37 {
			t.Errorf("advance %d: total = %d, want 37", i+1, progress.Total)
		}
		if progress.Status != step.status {
			t.Errorf("advance %d: status = %s, want %s", i+1, progress.Status, step.status)
		}
	}

	if got := paperSystem.count(); got != 37 {
		t.Errorf("inserted papers = %d, want 37", got)
	}

	// Completion removes the work directory and the archive.
	if _, err := os.Stat(filepath.Join(dir, "extract_summer_2024")); !os.IsNotExist(err) {
		t.Errorf("work dir survived completion")
	}
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Errorf("archive survived completion")
	}
}

func TestDriverAdvanceCompletedIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	jobSystem := &fakeJobs{job: jobs.Job{
		ID:                 uuid.New(),
		Status:             jobs.StatusCompleted,
		TotalDocuments:     10,
		ProcessedDocuments: 10,
	}}
	paperSystem := &fakePapers{}
	driver := newTestDriver(t, dir, jobSystem, paperSystem)

	progress, err := driver.Advance(context.Background(), jobSystem.job.ID, 5)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	if progress.Status != jobs.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", progress.Status)
	}
	if progress.Percentage != 100 {
		t.Errorf("percentage = %v, want 100", progress.Percentage)
	}
	if got := paperSystem.count(); got != 0 {
		t.Errorf("inserted papers = %d, want 0", got)
	}
	if len(jobSystem.progress) != 0 {
		t.Errorf("progress writes = %d, want 0", len(jobSystem.progress))
	}
}

func TestDriverAdvanceFailedJob(t *testing.T) {
	dir := t.TempDir()
	reason := "archive is not a readable zip file"

	jobSystem := &fakeJobs{job: jobs.Job{
		ID:            uuid.New(),
		Status:        jobs.StatusFailed,
		FailureReason: &reason,
	}}
	driver := newTestDriver(t, dir, jobSystem, &fakePapers{})

	_, err := driver.Advance(context.Background(), jobSystem.job.ID, 5)
	if err == nil || !strings.Contains(err.Error(), reason) {
		t.Errorf("err = %v, want failure reason %q", err, reason)
	}
}

func TestDriverSkipsRejectedDocuments(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "papers.zip")

	entries := paperEntries(3)
	entries["lecture notes.pdf"] = "not an exam paper"
	entries["B.Sc Chemistry Semester-II Subject - BSC201 - Organic.pdf"] = "wrong degree"
	writeArchive(t, archive, entries)

	jobSystem := &fakeJobs{job: jobs.Job{
		ID:          uuid.New(),
		ArchivePath: archive,
		ExamType:    "winter",
		ExamYear:    2023,
		Status:      jobs.StatusUploaded,
	}}
	paperSystem := &fakePapers{}
	driver := newTestDriver(t, dir, jobSystem, paperSystem)

	progress, err := driver.Advance(context.Background(), jobSystem.job.ID, 10)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}

	// All five documents count toward progress, only three are cataloged.
	if progress.Processed != 5 {
		t.Errorf("processed = %d, want 5", progress.Processed)
	}
	if progress.Status != jobs.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", progress.Status)
	}
	if got := paperSystem.count(); got != 3 {
		t.Errorf("inserted papers = %d, want 3", got)
	}
}

func TestDriverTransientExtractionErrorLeavesJobRetryable(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "papers.zip")
	writeArchive(t, archive, paperEntries(2))

	// A regular file where the upload directory should be makes work-dir
	// creation fail without the archive being at fault.
	uploads := filepath.Join(dir, "uploads")
	if err := os.WriteFile(uploads, []byte("x"), 0o644); err != nil {
		t.Fatalf("occupy upload dir path: %v", err)
	}

	jobSystem := &fakeJobs{job: jobs.Job{
		ID:          uuid.New(),
		ArchivePath: archive,
		ExamType:    "summer",
		ExamYear:    2024,
		Status:      jobs.StatusUploaded,
	}}
	driver := newTestDriver(t, uploads, jobSystem, &fakePapers{})

	_, err := driver.Advance(context.Background(), jobSystem.job.ID, 10)
	if err == nil {
		t.Fatal("expected extraction error")
	}
	if errors.Is(err, ingest.ErrCorruptArchive) {
		t.Fatalf("err = %v, want a plain IO error", err)
	}
	if jobSystem.failed != "" {
		t.Errorf("job marked failed for a retryable error: %q", jobSystem.failed)
	}
	if jobSystem.job.Status != jobs.StatusUploaded {
		t.Errorf("status = %s, want UPLOADED", jobSystem.job.Status)
	}
}

func TestDriverCorruptArchiveFailsJob(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "papers.zip")
	if err := os.WriteFile(archive, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}

	jobSystem := &fakeJobs{job: jobs.Job{
		ID:          uuid.New(),
		ArchivePath: archive,
		ExamType:    "summer",
		ExamYear:    2024,
		Status:      jobs.StatusUploaded,
	}}
	driver := newTestDriver(t, dir, jobSystem, &fakePapers{})

	_, err := driver.Advance(context.Background(), jobSystem.job.ID, 10)
	if !errors.Is(err, ingest.ErrCorruptArchive) {
		t.Fatalf("err = %v, want ErrCorruptArchive", err)
	}
	if jobSystem.failed == "" {
		t.Error("job was not marked failed")
	}
}

func TestDriverNoDocumentsFailsJob(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "empty.zip")
	writeArchive(t, archive, map[string]string{"readme.txt": "no pdfs here"})

	jobSystem := &fakeJobs{job: jobs.Job{
		ID:          uuid.New(),
		ArchivePath: archive,
		ExamType:    "summer",
		ExamYear:    2024,
		Status:      jobs.StatusUploaded,
	}}
	driver := newTestDriver(t, dir, jobSystem, &fakePapers{})

	_, err := driver.Advance(context.Background(), jobSystem.job.ID, 10)
	if err == nil {
		t.Fatal("expected error for empty archive")
	}
	if jobSystem.failed == "" {
		t.Error("job was not marked failed")
	}
}
