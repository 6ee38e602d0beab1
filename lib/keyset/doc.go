// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keyset implements typed keysets and the lockbox scheme that
// distributes their secret material — spec component B.
//
// A [Keyset] bundles a signing keypair and an encryption keypair under
// one (scope, name, generation) identity. Keysets are never mutated:
// rotation creates a new keyset at generation+1 and leaves the old one
// valid for verifying history. A [Lockbox] seals one keyset's full
// (secret) form to another keyset's encryption public key; holding the
// recipient's secret encryption key is sufficient to recover the
// sealed contents. [Keyring] computes, by fixpoint iteration over a
// set of lockboxes, every keyset a given starting keyset transitively
// unlocks — the mechanism that lets a member recover the team key, its
// role keys, and its own device/member keys without any of those
// relationships existing as in-memory pointers.
package keyset
