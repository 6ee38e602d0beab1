// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package team implements spec component D: the pure team-state
// reducer that folds a linearized signature graph into membership,
// roles, devices, invitations, and lockboxes.
//
// [TeamState] is the fold's accumulator. [Reduce] walks a sequence of
// [graph.Link]s (as produced by [graph.Graph.GetSequence] under
// [MembershipResolver]), decoding each link's payload into an [Action],
// verifying the link's signature against the author's current device
// key, running that action's registered validator (policy), then its
// reducer (effect). A validator failure halts the fold at that link
// and returns the state as of the link immediately before it,
// alongside the rejecting error; a signature failure aborts the fold
// entirely with a [teamerr.Error] of kind [teamerr.GraphCorrupt].
//
// [MembershipResolver] wraps [graph.TrivialResolver] with the membership-aware
// filtering spec §4.C calls for: writes by a member one concurrent
// branch removes are dropped from the other branch before the two are
// interleaved.
package team
