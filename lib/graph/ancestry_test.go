// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import "testing"

func TestIsPredecessorAlongLinearChain(t *testing.T) {
	g, seed, _ := newTestGraph(t)
	root := g.Head

	link, err := g.Append(AppendParams{Payload: []byte("x"), UserName: "alice", DeviceID: "d", Timestamp: 2}, seed)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	hash, _ := link.Hash()

	if !g.IsPredecessor(root, hash) {
		t.Fatal("root should be a predecessor of the appended link")
	}
	if g.IsPredecessor(hash, root) {
		t.Fatal("appended link should not be a predecessor of root")
	}
	if g.IsPredecessor(root, root) {
		t.Fatal("IsPredecessor should be strict, not reflexive")
	}
}

func TestGetCommonPredecessorAcrossMergedBranches(t *testing.T) {
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

	common, err := branchA.GetCommonPredecessor(branchA.Head, branchB.Head)
	if err == nil {
		t.Fatal("expected an error: branchA does not yet know about branchB's links")
	}
	_ = common

	if err := branchA.Merge(branchB); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	ancestor, err := branchA.GetCommonPredecessor(branchA.Links[branchA.Head].Body[0], branchA.Links[branchA.Head].Body[1])
	if err != nil {
		t.Fatalf("GetCommonPredecessor: %v", err)
	}
	if ancestor != root {
		t.Fatalf("GetCommonPredecessor = %s, want root %s", ancestor, root)
	}
}
