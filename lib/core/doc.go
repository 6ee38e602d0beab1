// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package core is the host-facing team instance spec §5 and §6
// describe: one [Team] per signature graph, owning its graph, its
// reduced [team.TeamState], and the [keyset.Keyring] its local device
// can compute from that state's lockboxes.
//
// Every mutation — founding the team, adding or removing a member,
// posting or admitting an invitation, rotating a scope's keys — goes
// through [Team]'s serial dispatch: append a link, re-reduce the
// whole graph under [team.MembershipResolver], recompute the
// keyring, and emit an [EventUpdated] event. A team instance is
// single-threaded in effect even though [Team]'s methods are safe to
// call from multiple goroutines: dispatch holds one mutex for the
// instance's entire lifetime, so concurrent mutations and a
// [lib/connection] goroutine feeding in SYNC merges always serialize
// (spec §5: "the core is single-threaded cooperative within one team
// instance").
//
// [Create] founds a new team from a human-chosen seed. [Load]
// restores one from a previously [Team.Save]d blob plus the local
// device's own root keyset. Both return a [Team] ready to dispatch.
package core
