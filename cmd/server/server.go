package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pyqvault/pyqvault/internal/api"
	"github.com/pyqvault/pyqvault/internal/config"
	"github.com/pyqvault/pyqvault/internal/infrastructure"
)

// Server owns the HTTP listener and the application infrastructure.
type Server struct {
	config *config.Config
	logger *slog.Logger
	infra  *infrastructure.Infrastructure
	http   *http.Server
}

// NewServer assembles infrastructure, domain modules, and the HTTP server.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	infra, err := infrastructure.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	rt := &api.Runtime{
		Infrastructure: infra,
		Pagination:     cfg.API.Pagination,
	}

	modules, err := buildModules(cfg, rt)
	if err != nil {
		return nil, err
	}

	router := buildRouter(infra, modules...)

	return &Server{
		config: cfg,
		logger: logger,
		infra:  infra,
		http:   newHTTPServer(&cfg.Server, router),
	}, nil
}

// Run starts the listener, waits for startup hooks, and blocks until a
// termination signal or a listener failure, then shuts everything down.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.infra.Lifecycle.WaitForStartup()
	s.logger.Info("startup complete", "version", s.config.Version)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case received := <-sig:
		s.logger.Info("shutdown signal received", "signal", received)
	}

	timeout := s.config.ShutdownTimeoutDuration()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		s.logger.Error("http server shutdown failed", "error", err)
	}

	return s.infra.Lifecycle.Shutdown(timeout)
}
