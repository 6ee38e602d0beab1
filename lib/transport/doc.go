// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport defines the full-duplex, ordered byte channel a
// connection's state machine runs over, with two implementations: an
// in-memory [Pipe] for tests, and a plain TCP [TCPListener] and
// [TCPDialer] that need direct reachability between hosts. Other
// transports (QUIC, a relay) are not provided here; [Pipe] lets
// [connection.Connection] be exercised without a network.
package transport
