// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bureau-foundation/concord/lib/core"
	"github.com/bureau-foundation/concord/lib/identity"
	"github.com/bureau-foundation/concord/lib/storage"
)

// teamStore returns the [storage.FileStore] a local team's blob is
// persisted to, one file per team name under the config's state
// directory.
func (env *Environment) teamStore(teamName string) (*storage.FileStore, error) {
	path := filepath.Join(env.Config.Paths.State, teamName+".team.cbor")
	store, err := storage.NewFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("commands: opening team store for %q: %w", teamName, err)
	}
	return store, nil
}

// openTeam loads a previously created team by name, restoring it
// against the caller's own local device identity.
func (env *Environment) openTeam(teamName, userName, deviceName string) (*core.Team, *identity.Device, error) {
	device, err := env.device(userName, deviceName)
	if err != nil {
		return nil, nil, err
	}

	store, err := env.teamStore(teamName)
	if err != nil {
		device.Close()
		return nil, nil, err
	}
	blob, err := store.Load(context.Background())
	if err != nil {
		device.Close()
		return nil, nil, fmt.Errorf("commands: team %q not found locally (run 'concord create' or join via an invitation first): %w", teamName, err)
	}

	team, err := core.Load(core.LoadParams{Blob: blob, Device: device, Store: store, Logger: env.Logger})
	if err != nil {
		device.Close()
		return nil, nil, fmt.Errorf("commands: loading team %q: %w", teamName, err)
	}
	return team, device, nil
}

// saveTeam persists team's current state through its configured
// store, which [core.Load]/[core.Create] already attach from
// [env.teamStore] — this is a thin wrapper so command bodies read as
// "do the thing, then saveTeam" without repeating the error message.
func saveTeam(team *core.Team) error {
	if _, err := team.Save(); err != nil {
		return fmt.Errorf("commands: saving team state: %w", err)
	}
	return nil
}
