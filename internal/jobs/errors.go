package jobs

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound          = errors.New("job not found")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrJobFailed         = errors.New("job has failed and cannot be processed")
)

// MapHTTPStatus translates domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrJobFailed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
