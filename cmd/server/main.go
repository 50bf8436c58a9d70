package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pyqvault/pyqvault/internal/config"
)

func main() {
	configDir := flag.String("config", ".", "directory containing config.toml")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Error("configuration load failed", "error", err)
		os.Exit(1)
	}

	server, err := NewServer(cfg, logger)
	if err != nil {
		logger.Error("server initialization failed", "error", err)
		os.Exit(1)
	}

	if err := server.Run(); err != nil {
		logger.Error("server terminated", "error", err)
		os.Exit(1)
	}
}
