// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands wires the spec §6 host-facing Team API into the
// concord CLI's command tree: one [cli.Command] factory per
// operation, each opening a locally persisted team from
// [lib/config.Config.Paths.State], running one Team method, and
// saving the result back.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bureau-foundation/concord/lib/config"
	"github.com/bureau-foundation/concord/lib/identity"
)

// Environment carries what every command needs to open a team and a
// local device identity: the loaded config and a logger. Built once
// in main and threaded into every command factory.
type Environment struct {
	Config *config.Config
	Logger *slog.Logger
}

// NewEnvironment loads config (falling back to [config.Default] if
// CONCORD_CONFIG is unset, since a first-run `concord create` should
// not require a config file) and ensures its directories exist.
func NewEnvironment() (*Environment, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
		logger.Debug("no CONCORD_CONFIG set, using defaults", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("commands: invalid configuration: %w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}

	return &Environment{Config: cfg, Logger: logger}, nil
}

// device returns the environment's local device identity, persisted
// under the state directory and reused across invocations.
func (env *Environment) device(userName, deviceName string) (*identity.Device, error) {
	return loadOrCreateDevice(env.Config.Paths.State, userName, deviceName)
}
