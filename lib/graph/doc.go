// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package graph implements the hash-linked, append-only signature DAG
// that every peer in a team replicates — spec component C.
//
// A [Graph] has exactly one root link and exactly one head; every
// other link is reachable from the head by walking Prev pointers
// (ordinary links) or Body pairs (merge links, which join two
// divergent heads back into one). [Create] mints a root, [Graph.Append]
// extends the head with a new signed link, and [Graph.Merge] unions
// two graphs that share a root, inserting an unsigned merge link
// addressed by the pair of heads it joins.
//
// [Graph.GetSequence] linearizes the DAG into the single ordered
// sequence of non-merge links a [Resolver] would produce deterministically
// on any peer: it walks the head backward, and at every merge link
// finds the two branches' nearest common ancestor, recurses into each
// branch independently, and asks the resolver to interleave them.
// [TrivialResolver] is the default — concatenate by a deterministic
// hash order — and spec component D supplies a team-aware resolver
// that additionally drops writes a concurrent removal invalidates.
package graph
