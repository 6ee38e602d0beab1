// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"testing"

	"github.com/bureau-foundation/concord/lib/crypto"
)

func TestValidateAcceptsWellSignedChain(t *testing.T) {
	g, seed, public := newTestGraph(t)
	if _, err := g.Append(AppendParams{Payload: []byte("x"), UserName: "alice", DeviceID: "d", Timestamp: 2}, seed); err != nil {
		t.Fatalf("Append: %v", err)
	}

	err := g.Validate(func(*Link) (crypto.SigningPublicKey, error) {
		return public, nil
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsWrongResolvedKey(t *testing.T) {
	g, seed, _ := newTestGraph(t)
	if _, err := g.Append(AppendParams{Payload: []byte("x"), UserName: "alice", DeviceID: "d", Timestamp: 2}, seed); err != nil {
		t.Fatalf("Append: %v", err)
	}

	wrongPublic, _, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}

	err = g.Validate(func(*Link) (crypto.SigningPublicKey, error) {
		return wrongPublic, nil
	})
	if err == nil {
		t.Fatal("Validate should reject a link whose resolved key does not match its signature")
	}
}

func TestValidateAcceptsGraphWithMerge(t *testing.T) {
	g, seed, public := newTestGraph(t)
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

	err := branchA.Validate(func(*Link) (crypto.SigningPublicKey, error) {
		return public, nil
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
