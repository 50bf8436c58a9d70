package ingest

import (
	"errors"
	"net/http"

	"github.com/pyqvault/pyqvault/internal/jobs"
)

var (
	ErrCorruptArchive  = errors.New("archive is not a readable zip file")
	ErrNoDocuments     = errors.New("archive contains no PDF documents")
	ErrInvalidURL      = errors.New("archive URL is not allowed")
	ErrArchiveTooLarge = errors.New("archive exceeds the maximum allowed size")
	ErrMissingFile     = errors.New("archive file is required")
)

// MapHTTPStatus translates domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrCorruptArchive), errors.Is(err, ErrNoDocuments):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidURL), errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrArchiveTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, jobs.ErrNotFound), errors.Is(err, jobs.ErrInvalidTransition), errors.Is(err, jobs.ErrJobFailed):
		return jobs.MapHTTPStatus(err)
	default:
		return http.StatusInternalServerError
	}
}
