// Package ingest turns uploaded exam paper archives into cataloged papers.
//
// An archive moves through three stages: extraction (Scanner), resumable
// batch classification and upload (Driver), and optional remote download
// before either (Fetcher). Progress is tracked by the jobs package so an
// interrupted ingestion can resume where it stopped.
package ingest

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const manifestName = "manifest.txt"

// Scanner extracts archives and enumerates the PDF documents inside them.
// The document list is written to a manifest at extraction time so every
// later batch sees the same documents in the same order, regardless of how
// the filesystem orders directory entries.
type Scanner struct {
	uploadDir string
	logger    *slog.Logger
}

// NewScanner creates a Scanner rooted at the given upload directory.
func NewScanner(uploadDir string, logger *slog.Logger) *Scanner {
	return &Scanner{
		uploadDir: uploadDir,
		logger:    logger.With("system", "scanner"),
	}
}

// WorkDir returns the extraction directory for an exam session.
func (s *Scanner) WorkDir(examType string, examYear int) string {
	name := fmt.Sprintf("extract_%s_%d", strings.ToLower(examType), examYear)
	return filepath.Join(s.uploadDir, name)
}

// Extract unpacks the archive into the session work directory and returns the
// directory along with the sorted relative paths of the PDFs found. Any
// previous extraction for the same session is replaced.
func (s *Scanner) Extract(archivePath, examType string, examYear int) (string, []string, error) {
	workDir := s.WorkDir(examType, examYear)

	if err := os.RemoveAll(workDir); err != nil {
		return "", nil, fmt.Errorf("clear work directory: %w", err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create work directory: %w", err)
	}

	if err := s.unpack(archivePath, workDir); err != nil {
		return "", nil, err
	}

	documents, err := findDocuments(workDir)
	if err != nil {
		return "", nil, err
	}

	if err := writeManifest(workDir, documents); err != nil {
		return "", nil, err
	}

	s.logger.Info("archive extracted",
		"archive", archivePath,
		"work_dir", workDir,
		"documents", len(documents),
	)
	return workDir, documents, nil
}

// Documents returns the manifest entries recorded at extraction time.
func (s *Scanner) Documents(workDir string) ([]string, error) {
	file, err := os.Open(filepath.Join(workDir, manifestName))
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var documents []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			documents = append(documents, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return documents, nil
}

// Cleanup removes the work directory and the archive after a completed job.
func (s *Scanner) Cleanup(workDir, archivePath string) error {
	if err := os.RemoveAll(workDir); err != nil {
		return fmt.Errorf("remove work directory: %w", err)
	}
	if archivePath != "" {
		if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove archive: %w", err)
		}
	}
	return nil
}

func (s *Scanner) unpack(archivePath, workDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if err := extractEntry(entry, workDir); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(entry *zip.File, workDir string) error {
	target := filepath.Join(workDir, filepath.FromSlash(entry.Name))

	// Reject entries that escape the work directory.
	rel, err := filepath.Rel(workDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("%w: entry %q escapes archive root", ErrCorruptArchive, entry.Name)
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create entry directory: %w", err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %q: %v", ErrCorruptArchive, entry.Name, err)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create entry file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("%w: extract entry %q: %v", ErrCorruptArchive, entry.Name, err)
	}
	return nil
}

func findDocuments(workDir string) ([]string, error) {
	var documents []string

	err := filepath.Walk(workDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			rel, err := filepath.Rel(workDir, path)
			if err != nil {
				return err
			}
			documents = append(documents, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan work directory: %w", err)
	}

	sort.Strings(documents)
	return documents, nil
}

func writeManifest(workDir string, documents []string) error {
	file, err := os.Create(filepath.Join(workDir, manifestName))
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, doc := range documents {
		if _, err := fmt.Fprintln(writer, doc); err != nil {
			return fmt.Errorf("write manifest: %w", err)
		}
	}
	return writer.Flush()
}
