// Package api assembles the HTTP API module from the domain systems.
package api

import (
	"net/http"

	"github.com/pyqvault/pyqvault/internal/config"
	"github.com/pyqvault/pyqvault/pkg/middleware"
	"github.com/pyqvault/pyqvault/pkg/module"
)

// NewModule builds the API module mounted at the configured base path.
func NewModule(cfg *config.Config, rt *Runtime) (*module.Module, *Domain, error) {
	domain, err := NewDomain(cfg, rt)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, cfg, rt, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Logger(rt.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))

	return m, domain, nil
}
