// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyset

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/concord/lib/teamerr"
)

// buildTestTeam constructs a minimal team/role/member lockbox chain:
// alice's member keyset unlocks the admin role keyset, which unlocks
// the team keyset — mirroring how spec §4.D's ADD_MEMBER posts
// lockboxes for team keys and each of the member's role keys.
func buildTestTeam(t *testing.T) (alice *Keyset, team *Keyset, admin *Keyset, lockboxes []*Lockbox) {
	t.Helper()

	alice, err := Create(ScopeMember, "alice", 0, nil)
	if err != nil {
		t.Fatalf("Create alice: %v", err)
	}
	admin, err = Create(ScopeRole, "admin", 0, nil)
	if err != nil {
		t.Fatalf("Create admin: %v", err)
	}
	team, err = Create(ScopeTeam, "t", 0, nil)
	if err != nil {
		t.Fatalf("Create team: %v", err)
	}

	adminToAlice, err := CreateLockbox(admin, ReferenceOf(alice))
	if err != nil {
		t.Fatalf("CreateLockbox admin->alice: %v", err)
	}
	teamToAdmin, err := CreateLockbox(team, ReferenceOf(admin))
	if err != nil {
		t.Fatalf("CreateLockbox team->admin: %v", err)
	}

	return alice, team, admin, []*Lockbox{adminToAlice, teamToAdmin}
}

func TestComputeKeyringFixpoint(t *testing.T) {
	alice, team, admin, lockboxes := buildTestTeam(t)
	defer team.Close()
	defer admin.Close()

	keyring, err := Compute(alice, lockboxes)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	defer keyring.Close()

	if _, ok := keyring.Get(admin.ID); !ok {
		t.Fatal("keyring did not recover the admin role keyset via one hop")
	}
	if _, ok := keyring.Get(team.ID); !ok {
		t.Fatal("keyring did not recover the team keyset via two hops")
	}

	found, err := keyring.Lookup(ScopeTeam, "t")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if found.ID != team.ID {
		t.Fatalf("Lookup returned %v, want %v", found.ID, team.ID)
	}
}

func TestComputeKeyringLookupNotFound(t *testing.T) {
	alice, team, admin, lockboxes := buildTestTeam(t)
	defer team.Close()
	defer admin.Close()

	keyring, err := Compute(alice, nil) // no lockboxes reachable
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	defer keyring.Close()
	_ = lockboxes

	_, err = keyring.Lookup(ScopeTeam, "t")
	var teamErr *teamerr.Error
	if !errors.As(err, &teamErr) || teamErr.Kind != teamerr.NotFound {
		t.Fatalf("Lookup with no lockboxes: got %v, want teamerr.NotFound", err)
	}
}

func TestComputeKeyringPicksLatestGeneration(t *testing.T) {
	alice, err := Create(ScopeMember, "alice", 0, nil)
	if err != nil {
		t.Fatalf("Create alice: %v", err)
	}

	teamGen0, err := Create(ScopeTeam, "t", 0, nil)
	if err != nil {
		t.Fatalf("Create teamGen0: %v", err)
	}
	defer teamGen0.Close()
	teamGen1, err := Create(ScopeTeam, "t", 1, nil)
	if err != nil {
		t.Fatalf("Create teamGen1: %v", err)
	}
	defer teamGen1.Close()

	lbGen0, err := CreateLockbox(teamGen0, ReferenceOf(alice))
	if err != nil {
		t.Fatalf("CreateLockbox gen0: %v", err)
	}
	lbGen1, err := CreateLockbox(teamGen1, ReferenceOf(alice))
	if err != nil {
		t.Fatalf("CreateLockbox gen1: %v", err)
	}

	keyring, err := Compute(alice, []*Lockbox{lbGen0, lbGen1})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	defer keyring.Close()

	latest, err := keyring.Lookup(ScopeTeam, "t")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if latest.ID.Generation != 1 {
		t.Fatalf("Lookup returned generation %d, want 1", latest.ID.Generation)
	}
}
