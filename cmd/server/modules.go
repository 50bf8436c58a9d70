package main

import (
	"github.com/pyqvault/pyqvault/internal/api"
	"github.com/pyqvault/pyqvault/internal/config"
	"github.com/pyqvault/pyqvault/pkg/module"
)

func buildModules(cfg *config.Config, rt *api.Runtime) ([]*module.Module, error) {
	apiModule, _, err := api.NewModule(cfg, rt)
	if err != nil {
		return nil, err
	}

	return []*module.Module{apiModule}, nil
}
