package papers

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound       = errors.New("paper not found")
	ErrMissingFacet   = errors.New("required facet parameter missing")
	ErrInvalidRequest = errors.New("invalid request")
)

// MapHTTPStatus translates domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingFacet), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
