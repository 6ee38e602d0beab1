// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package connection implements spec §4.F's pairwise connection
// protocol: the state machine two principals run over a
// [github.com/bureau-foundation/concord/lib/transport.Conn] to
// authenticate each other, admit a newcomer presenting an invitation,
// converge their signature graphs, and agree a session key for
// steady-state encrypted traffic.
//
// A [Connection] drives exactly one peer link. [New] wires it to a
// local [github.com/bureau-foundation/concord/lib/core.Team] (or, for
// an invitee who has none yet, to a [Context] carrying an invitation
// instead) and a transport connection; [Connection.Start] launches
// its goroutines and the handshake begins immediately — both sides
// send REQUEST_IDENTITY unconditionally on start, per spec §4.F step
// 1. [Connection.Events] reports connected/disconnected/error
// transitions; a host typically forwards these onto its team
// instance's own stream via [github.com/bureau-foundation/concord/lib/core.Team.Notify].
//
// Every message on the wire is CBOR Core Deterministic Encoding,
// framed by [github.com/bureau-foundation/concord/lib/codec.NewEncoder]/[github.com/bureau-foundation/concord/lib/codec.NewDecoder]'s
// self-delimiting stream — no length prefix is needed. All mutable
// connection state (the handshake's sub-state, the peer's claimed
// identity, the negotiated session key, sequence counters) is owned
// exclusively by one run-loop goroutine; every other call — Deliver,
// Stop — only ever posts to a channel that loop selects on, so the
// state machine itself never needs a mutex.
package connection
