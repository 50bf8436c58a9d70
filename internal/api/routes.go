package api

import (
	"net/http"

	"github.com/pyqvault/pyqvault/internal/auth"
	"github.com/pyqvault/pyqvault/internal/config"
	"github.com/pyqvault/pyqvault/internal/ingest"
	"github.com/pyqvault/pyqvault/internal/papers"
	"github.com/pyqvault/pyqvault/pkg/routes"
)

// registerRoutes mounts the public and admin route groups on the API mux.
// Admin and protected auth routes sit behind their own sub-mux wrapped in the
// auth middleware.
func registerRoutes(mux *http.ServeMux, cfg *config.Config, rt *Runtime, domain *Domain) {
	paperHandler := papers.NewHandler(domain.Papers, rt.Pagination, rt.Logger)
	authHandler := auth.NewHandler(domain.Auth, rt.Logger)
	ingestHandler := ingest.NewHandler(
		&cfg.Ingest,
		domain.Jobs,
		domain.Driver,
		domain.Fetcher,
		rt.Pagination,
		cfg.API.MaxUploadSizeBytes(),
		rt.Logger,
	)

	routes.Register(mux,
		paperHandler.Routes(),
		authHandler.Routes(),
	)

	protected := http.NewServeMux()
	routes.Register(protected,
		ingestHandler.Routes(),
		authHandler.ProtectedRoutes(),
	)

	guarded := auth.RequireAuth(domain.Auth, protected)
	mux.Handle("/admin/", guarded)
	mux.Handle("/auth/verify", guarded)
	mux.Handle("/auth/change-password", guarded)
}
