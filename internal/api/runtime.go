package api

import (
	"github.com/pyqvault/pyqvault/internal/infrastructure"
	"github.com/pyqvault/pyqvault/pkg/pagination"
)

// Runtime carries the shared infrastructure and API-level settings into the
// domain systems and handlers.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
}
