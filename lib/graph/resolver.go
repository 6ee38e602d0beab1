// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"github.com/bureau-foundation/concord/lib/codec"
)

// Resolver interleaves two branches of concurrent, non-merge links
// that diverged from a common ancestor into one deterministic
// sequence. A resolver must be pure: the same two branches, on any
// peer, at any time, produce bit-for-bit the same result — that
// purity is what makes [Graph.GetSequence] converge across peers.
type Resolver func(branchA, branchB []*Link) []*Link

// TrivialResolver orders two branches by hashing each branch's first
// link's payload under a fixed domain, then concatenating the
// lower-hashed branch first. It performs no semantic filtering —
// component D's team-aware resolver wraps this ordering with
// membership-aware drops (spec §4.C).
func TrivialResolver(branchA, branchB []*Link) []*Link {
	keyOf := func(branch []*Link) codec.Hash {
		if len(branch) == 0 {
			return codec.Hash{}
		}
		return codec.HashUnder(codec.DomainSort, branch[0].Payload)
	}

	first, second := branchA, branchB
	if keyOf(branchB).String() < keyOf(branchA).String() {
		first, second = branchB, branchA
	}

	result := make([]*Link, 0, len(first)+len(second))
	result = append(result, first...)
	result = append(result, second...)
	return result
}
