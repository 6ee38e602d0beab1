// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import "testing"

func TestGetSequenceLinearChain(t *testing.T) {
	g, seed, _ := newTestGraph(t)
	root := g.Head

	for i := 2; i <= 4; i++ {
		if _, err := g.Append(AppendParams{Payload: []byte{byte(i)}, UserName: "alice", DeviceID: "d", Timestamp: int64(i)}, seed); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	sequence, err := g.GetSequence(TrivialResolver)
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}
	if len(sequence) != 4 {
		t.Fatalf("len(sequence) = %d, want 4", len(sequence))
	}
	hash, _ := sequence[0].Hash()
	if hash != root {
		t.Fatalf("sequence[0] = %s, want root %s", hash, root)
	}
	for i, link := range sequence {
		if link.Kind == Merge {
			t.Fatalf("sequence[%d] is unexpectedly a merge link", i)
		}
	}
}

func TestGetSequenceDropsMergeLinksAndIsOrderStable(t *testing.T) {
	g, seed, _ := newTestGraph(t)
	root := g.Head

	branchA := &Graph{Root: g.Root, Head: root, Links: map[Hash]*Link{root: g.Links[root]}}
	branchB := &Graph{Root: g.Root, Head: root, Links: map[Hash]*Link{root: g.Links[root]}}

	if _, err := branchA.Append(AppendParams{Payload: []byte("a"), UserName: "alice", DeviceID: "d1", Timestamp: 2}, seed); err != nil {
		t.Fatalf("Append branchA: %v", err)
	}
	if _, err := branchB.Append(AppendParams{Payload: []byte("b"), UserName: "alice", DeviceID: "d2", Timestamp: 2}, seed); err != nil {
		t.Fatalf("Append branchB: %v", err)
	}
	if err := branchA.Merge(branchB); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	sequenceOne, err := branchA.GetSequence(TrivialResolver)
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}
	if len(sequenceOne) != 3 {
		t.Fatalf("len(sequence) = %d, want 3 (root + two branch links)", len(sequenceOne))
	}
	for _, link := range sequenceOne {
		if link.Kind == Merge {
			t.Fatal("GetSequence must never include a merge link")
		}
	}

	sequenceTwo, err := branchA.GetSequence(TrivialResolver)
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}
	for i := range sequenceOne {
		hashA, _ := sequenceOne[i].Hash()
		hashB, _ := sequenceTwo[i].Hash()
		if hashA != hashB {
			t.Fatalf("GetSequence is not stable across calls at index %d", i)
		}
	}
}

func TestGetSequenceConvergesRegardlessOfMergeDirection(t *testing.T) {
	g, seed, _ := newTestGraph(t)
	root := g.Head

	branchA := &Graph{Root: g.Root, Head: root, Links: map[Hash]*Link{root: g.Links[root]}}
	branchB := &Graph{Root: g.Root, Head: root, Links: map[Hash]*Link{root: g.Links[root]}}

	if _, err := branchA.Append(AppendParams{Payload: []byte("a"), UserName: "alice", DeviceID: "d1", Timestamp: 2}, seed); err != nil {
		t.Fatalf("Append branchA: %v", err)
	}
	if _, err := branchB.Append(AppendParams{Payload: []byte("b"), UserName: "alice", DeviceID: "d2", Timestamp: 2}, seed); err != nil {
		t.Fatalf("Append branchB: %v", err)
	}

	mergedFromA := &Graph{Root: branchA.Root, Head: branchA.Head, Links: cloneLinks(branchA.Links)}
	if err := mergedFromA.Merge(branchB); err != nil {
		t.Fatalf("Merge (A into): %v", err)
	}
	mergedFromB := &Graph{Root: branchB.Root, Head: branchB.Head, Links: cloneLinks(branchB.Links)}
	if err := mergedFromB.Merge(branchA); err != nil {
		t.Fatalf("Merge (B into): %v", err)
	}

	sequenceA, err := mergedFromA.GetSequence(TrivialResolver)
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}
	sequenceB, err := mergedFromB.GetSequence(TrivialResolver)
	if err != nil {
		t.Fatalf("GetSequence: %v", err)
	}

	if len(sequenceA) != len(sequenceB) {
		t.Fatalf("sequence lengths differ: %d vs %d", len(sequenceA), len(sequenceB))
	}
	for i := range sequenceA {
		hashA, _ := sequenceA[i].Hash()
		hashB, _ := sequenceB[i].Hash()
		if hashA != hashB {
			t.Fatalf("sequence diverges by merge direction at index %d", i)
		}
	}
}

func cloneLinks(links map[Hash]*Link) map[Hash]*Link {
	clone := make(map[Hash]*Link, len(links))
	for hash, link := range links {
		clone[hash] = link
	}
	return clone
}
