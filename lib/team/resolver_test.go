// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"testing"

	"github.com/bureau-foundation/concord/lib/graph"
)

func actionLink(t *testing.T, userName, deviceID string, action *Action) *graph.Link {
	t.Helper()
	payload, err := action.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return &graph.Link{Kind: graph.NonRoot, UserName: userName, DeviceID: deviceID, Payload: payload}
}

func TestMembershipResolverDropsRemovedMembersWrites(t *testing.T) {
	state := New()
	state.Members["admin"] = &Member{UserName: "admin", Roles: map[string]bool{AdminRole: true}}
	state.Members["bob"] = &Member{UserName: "bob"}

	branchA := []*graph.Link{actionLink(t, "admin", "d", &Action{Kind: ActionRemoveMember, UserName: "bob"})}
	branchB := []*graph.Link{actionLink(t, "bob", "d", &Action{Kind: ActionAddRole, Role: &Role{RoleName: "writer"}})}

	merged := MembershipResolver(state)(branchA, branchB)

	for _, link := range merged {
		if link.UserName == "bob" {
			t.Fatal("bob's concurrent write should have been dropped after bob was removed on the other branch")
		}
	}
	found := false
	for _, link := range merged {
		if link.UserName == "admin" {
			found = true
		}
	}
	if !found {
		t.Fatal("admin's removal link should survive")
	}
}

func TestMembershipResolverResolvesMutualAdminRemoval(t *testing.T) {
	state := New()
	state.Members["alice"] = &Member{UserName: "alice", Roles: map[string]bool{AdminRole: true}}
	state.Members["carl"] = &Member{UserName: "carl", Roles: map[string]bool{AdminRole: true}}

	removeCarl := actionLink(t, "alice", "d", &Action{Kind: ActionRemoveMember, UserName: "carl"})
	removeAlice := actionLink(t, "carl", "d", &Action{Kind: ActionRemoveMember, UserName: "alice"})

	branchA := []*graph.Link{removeCarl}
	branchB := []*graph.Link{removeAlice}

	merged := MembershipResolver(state)(branchA, branchB)

	hasAlice, hasCarl := false, false
	for _, link := range merged {
		if link == removeCarl {
			hasAlice = true // authored by alice
		}
		if link == removeAlice {
			hasCarl = true // authored by carl
		}
	}
	if hasAlice && hasCarl {
		t.Fatal("mutual admin removals should not both survive the merge")
	}
	if !hasAlice && !hasCarl {
		t.Fatal("exactly one of the mutual removals should survive")
	}

	loser := "alice"
	if sortKey("carl") < sortKey("alice") {
		loser = "carl"
	}
	if loser == "alice" && hasAlice {
		t.Fatal("alice's removal should have been dropped as the lower-sorted author")
	}
	if loser == "carl" && hasCarl {
		t.Fatal("carl's removal should have been dropped as the lower-sorted author")
	}
}

func TestMembershipResolverPassesThroughWhenNoConflict(t *testing.T) {
	state := New()
	state.Members["admin"] = &Member{UserName: "admin", Roles: map[string]bool{AdminRole: true}}
	state.Members["bob"] = &Member{UserName: "bob"}

	branchA := []*graph.Link{actionLink(t, "admin", "d", &Action{Kind: ActionAddRole, Role: &Role{RoleName: "writer"}})}
	branchB := []*graph.Link{actionLink(t, "bob", "d", &Action{Kind: ActionAddRole, Role: &Role{RoleName: "reader"}})}

	merged := MembershipResolver(state)(branchA, branchB)
	if len(merged) != 2 {
		t.Fatalf("len(merged) = %d, want 2 (no conflicts to drop)", len(merged))
	}
}
