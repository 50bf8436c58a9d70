package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pyqvault/pyqvault/internal/jobs"
	"github.com/pyqvault/pyqvault/pkg/lifecycle"
)

// Fetcher downloads remote archives in the background. A fetch runs on the
// lifecycle context so in-flight downloads are abandoned on shutdown; the
// job is marked failed rather than left half-fetched.
type Fetcher struct {
	jobs    jobs.System
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseCtx context.Context
}

// NewFetcher creates a remote archive fetcher.
func NewFetcher(cfg *Config, jobSystem jobs.System, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		jobs:    jobSystem,
		config:  cfg,
		client:  &http.Client{Timeout: cfg.FetchTimeout()},
		logger:  logger.With("system", "fetcher"),
		baseCtx: context.Background(),
	}
}

// Start binds the fetcher to the lifecycle context.
func (f *Fetcher) Start(lc *lifecycle.Coordinator) error {
	f.baseCtx = lc.Context()
	return nil
}

// ValidateURL rejects URLs that are not plain http(s) or that point at
// loopback, private, or link-local addresses.
func (f *Fetcher) ValidateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrInvalidURL, parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" || host == "localhost" {
		return fmt.Errorf("%w: host %q", ErrInvalidURL, host)
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("%w: address %s is not routable", ErrInvalidURL, ip)
		}
	}

	return nil
}

// FetchAsync downloads the archive for a job in the background. The job must
// be in FETCHING; it transitions to UPLOADED on success or FAILED otherwise.
func (f *Fetcher) FetchAsync(jobID uuid.UUID, rawURL, targetPath string) {
	go func() {
		ctx, cancel := context.WithTimeout(f.baseCtx, f.config.FetchTimeout())
		defer cancel()

		// Job bookkeeping must outlive the download deadline; a timed-out
		// fetch still has to commit its FETCHING -> FAILED transition.
		record := context.WithoutCancel(f.baseCtx)

		if err := f.fetch(ctx, rawURL, targetPath); err != nil {
			f.logger.Error("archive fetch failed", "job_id", jobID, "url", rawURL, "error", err)
			if removeErr := os.Remove(targetPath); removeErr != nil && !os.IsNotExist(removeErr) {
				f.logger.Warn("partial archive cleanup failed", "path", targetPath, "error", removeErr)
			}
			if failErr := f.jobs.MarkFailed(record, jobID, err.Error()); failErr != nil {
				f.logger.Error("job failure record failed", "job_id", jobID, "error", failErr)
			}
			return
		}

		if err := f.jobs.SetFetched(record, jobID, targetPath); err != nil {
			f.logger.Error("fetched job update failed", "job_id", jobID, "error", err)
			return
		}

		f.logger.Info("archive fetched", "job_id", jobID, "path", targetPath)
	}()
}

func (f *Fetcher) fetch(ctx context.Context, rawURL, targetPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch archive: unexpected status %s", resp.Status)
	}

	maxSize := f.config.MaxFetchSizeBytes()
	if resp.ContentLength > maxSize {
		return ErrArchiveTooLarge
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}

	file, err := os.Create(targetPath)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}
	defer file.Close()

	// Read one byte past the ceiling to detect oversized bodies that did not
	// declare a Content-Length.
	written, err := io.Copy(file, io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}
	if written > maxSize {
		return ErrArchiveTooLarge
	}

	return file.Sync()
}
