// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
)

// Store persists and retrieves one opaque blob: a team instance's
// serialized graph plus keyring. Implementations need not support
// concurrent writers; the host serializes saves the same way it
// serializes every other mutation through the team dispatch (spec
// §5).
type Store interface {
	// Save persists blob, replacing whatever was previously stored.
	Save(ctx context.Context, blob []byte) error

	// Load returns the most recently saved blob. Returns an error
	// wrapping [ErrNotFound] if nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)
}

// ErrNotFound is returned (wrapped) by Load when no blob has ever been
// saved.
var ErrNotFound = fmt.Errorf("storage: no blob saved")
