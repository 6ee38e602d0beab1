// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity implements spec component G: a device's own
// identity (derivation of its stable id and keyset) and the three
// shapes of local context a connection can present when it starts.
//
// [DeviceID] derives a device's id deterministically from its owning
// user name and a human-chosen device name — the same derivation both
// sides of a connection perform independently to agree on what a
// device is called.
//
// [NewDevice] builds a fresh [Device]: a [keyset.ScopeDevice] keyset
// addressed by that id, holding the signing and encryption secret
// material the device uses to author links and unseal lockboxes.
//
// A connection selects one of [MemberContext], [ServerContext], or
// [InviteeContext] before it starts, per spec §4.F step 1 — which one
// determines how the local side answers CLAIM_IDENTITY.
package identity
