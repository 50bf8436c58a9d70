package main

import (
	"net/http"

	"github.com/pyqvault/pyqvault/internal/config"
	"github.com/pyqvault/pyqvault/internal/infrastructure"
	"github.com/pyqvault/pyqvault/pkg/handlers"
	"github.com/pyqvault/pyqvault/pkg/module"
)

func buildRouter(infra *infrastructure.Infrastructure, modules ...*module.Module) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	for _, m := range modules {
		router.Mount(m)
	}

	return router
}

func newHTTPServer(cfg *config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeoutDuration(),
		WriteTimeout: cfg.WriteTimeoutDuration(),
		IdleTimeout:  cfg.IdleTimeoutDuration(),
	}
}
