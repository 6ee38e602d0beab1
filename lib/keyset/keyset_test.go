// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyset

import "testing"

func TestCreateFromSeedDeterministic(t *testing.T) {
	seed := []byte("a-seed")

	first, err := Create(ScopeTeam, "t", 0, seed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer first.Close()

	second, err := Create(ScopeTeam, "t", 0, seed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer second.Close()

	if first.SigningPublic != second.SigningPublic {
		t.Fatal("same seed produced different signing public keys")
	}
	if first.EncryptPublic != second.EncryptPublic {
		t.Fatal("same seed produced different encryption public keys")
	}
}

func TestCreateFromSeedDiffersByScopeAndName(t *testing.T) {
	seed := []byte("a-seed")

	team, err := Create(ScopeTeam, "t", 0, seed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer team.Close()

	role, err := Create(ScopeRole, "t", 0, seed)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer role.Close()

	if team.SigningPublic == role.SigningPublic {
		t.Fatal("same seed under different scopes produced the same signing key")
	}
}

func TestCreateRandomKeysetsDiffer(t *testing.T) {
	first, err := Create(ScopeMember, "alice", 0, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer first.Close()

	second, err := Create(ScopeMember, "alice", 1, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer second.Close()

	if first.SigningPublic == second.SigningPublic {
		t.Fatal("two random keyset generations produced the same signing key")
	}
}

func TestRedactStripsSecrets(t *testing.T) {
	ks, err := Create(ScopeDevice, "phone", 0, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer ks.Close()

	public := Redact(ks)
	if !public.IsRedacted() {
		t.Fatal("Redact did not strip secrets")
	}
	if public.SigningPublic != ks.SigningPublic || public.EncryptPublic != ks.EncryptPublic {
		t.Fatal("Redact changed the public keys")
	}
}
