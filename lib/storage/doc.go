// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage implements spec §6's "Persistent storage" surface:
// the host-supplied save(blob)/load() → blob pair, opaque to the core.
// A team instance's blob is `serialize(graph) + separator +
// serialize(keyring)`; this package only ever moves bytes — it has no
// notion of graphs, keysets, or teams.
package storage
