// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/secret"
)

func newTestSeed(t *testing.T) (*secret.Buffer, crypto.SigningPublicKey) {
	t.Helper()
	public, seed, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	return seed, public
}

func newTestGraph(t *testing.T) (*Graph, *secret.Buffer, crypto.SigningPublicKey) {
	t.Helper()
	seed, public := newTestSeed(t)
	g, err := Create(CreateParams{
		Payload:       []byte("root payload"),
		UserName:      "alice",
		DeviceID:      "alice-laptop",
		ContextPublic: public[:],
		Timestamp:     1,
	}, seed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return g, seed, public
}

func TestCreateProducesSelfReferentialRootHead(t *testing.T) {
	g, _, _ := newTestGraph(t)
	if g.Root != g.Head {
		t.Fatal("fresh graph's root and head should be identical")
	}
	if len(g.Links) != 1 {
		t.Fatalf("fresh graph should hold exactly one link, got %d", len(g.Links))
	}
}

func TestAppendAdvancesHead(t *testing.T) {
	g, seed, _ := newTestGraph(t)
	root := g.Head

	link, err := g.Append(AppendParams{Payload: []byte("second"), UserName: "alice", DeviceID: "alice-laptop", Timestamp: 2}, seed)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if g.Head == root {
		t.Fatal("Append did not advance the head")
	}
	if link.Prev != root {
		t.Fatalf("appended link.Prev = %s, want %s", link.Prev, root)
	}
}

func TestCreateIsDeterministicGivenSameInputs(t *testing.T) {
	seed, _ := newTestSeed(t)

	g1, err := Create(CreateParams{Payload: []byte("p"), UserName: "alice", DeviceID: "d", ContextPublic: []byte{1, 2, 3}, Timestamp: 1}, seed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	g2, err := Create(CreateParams{Payload: []byte("p"), UserName: "alice", DeviceID: "d", ContextPublic: []byte{1, 2, 3}, Timestamp: 1}, seed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g1.Root != g2.Root {
		t.Fatal("identical inputs produced different root hashes")
	}
}

func TestMergeRequiresSharedRoot(t *testing.T) {
	g1, _, _ := newTestGraph(t)
	g2, _, _ := newTestGraph(t)

	if err := g1.Merge(g2); err == nil {
		t.Fatal("Merge should reject graphs with different roots")
	}
}

func TestMergeOfDivergentBranchesProducesMergeLink(t *testing.T) {
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

	head := branchA.Links[branchA.Head]
	if head.Kind != Merge {
		t.Fatalf("merge head has Kind %v, want Merge", head.Kind)
	}
}

func TestMergeOfEqualHeadsIsNoOp(t *testing.T) {
	g, _, _ := newTestGraph(t)
	other := &Graph{Root: g.Root, Head: g.Head, Links: map[Hash]*Link{g.Head: g.Links[g.Head]}}

	head := g.Head
	if err := g.Merge(other); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if g.Head != head {
		t.Fatal("merging equal heads should not change the head")
	}
}

func TestGetPredecessorsReflectsLinkKind(t *testing.T) {
	g, seed, _ := newTestGraph(t)
	root := g.Head

	predecessors, err := g.GetPredecessors(root)
	if err != nil {
		t.Fatalf("GetPredecessors: %v", err)
	}
	if len(predecessors) != 0 {
		t.Fatalf("root link should have no predecessors, got %v", predecessors)
	}

	link, err := g.Append(AppendParams{Payload: []byte("x"), UserName: "alice", DeviceID: "d", Timestamp: 2}, seed)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	hash, _ := link.Hash()
	predecessors, err = g.GetPredecessors(hash)
	if err != nil {
		t.Fatalf("GetPredecessors: %v", err)
	}
	if len(predecessors) != 1 || predecessors[0] != root {
		t.Fatalf("GetPredecessors = %v, want [%s]", predecessors, root)
	}
}
