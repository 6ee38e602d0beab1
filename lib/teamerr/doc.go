// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package teamerr defines the error kinds shared by every component
// of the team graph and protocol — the reducer, the keyring, the
// invitation protocol, and the connection state machine all reject
// their inputs using the same small vocabulary of [Kind] values
// rather than ad hoc error strings, so a host application can
// pattern-match on "why" once instead of per package.
package teamerr
