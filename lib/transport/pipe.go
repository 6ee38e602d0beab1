// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import "net"

// Pipe returns two connected, in-memory [Conn]s: writes to one are
// readable from the other, and vice versa. net.Pipe's synchronous,
// unbuffered semantics are exactly what a test driving both ends of a
// connection from one goroutine pair wants: a Read blocks until the
// peer's matching Write, so the two sides can never silently race
// ahead of each other. Used to exercise a connection's state machine
// end to end without a real network transport.
func Pipe() (Conn, Conn) {
	return net.Pipe()
}
