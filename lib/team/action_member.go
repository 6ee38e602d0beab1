// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

// validateAddMember requires the author to be admin, the new member's
// userName to be unused (invariant I3), and the team plus each
// assigned role's keys sealed to the new member.
func validateAddMember(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	if action.Member == nil {
		return teamerr.New(teamerr.ProtocolViolation, "ADD_MEMBER missing a member")
	}
	if state.Has(action.Member.UserName) {
		return teamerr.New(teamerr.AlreadyMember, "%s is already a member", action.Member.UserName)
	}
	for role := range action.Member.Roles {
		if _, ok := state.Roles[role]; !ok {
			return teamerr.New(teamerr.NotFound, "role %q does not exist", role)
		}
	}
	roles := make([]string, 0, len(action.Member.Roles))
	for role := range action.Member.Roles {
		roles = append(roles, role)
	}
	if !hasTeamAndRoleLockboxes(action.Lockboxes, roles, action.Member.Keys.Encrypt) {
		return teamerr.New(teamerr.ProtocolViolation, "ADD_MEMBER must seal team and role keys to the new member")
	}
	return nil
}

// reduceAddMember inserts the new member and appends its lockboxes.
func reduceAddMember(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	next.Members[action.Member.UserName] = action.Member.clone()
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)
	return next, nil
}

// validateRemoveMember requires the author to be admin, the author to
// not be removing themselves, and the target to be a current member.
// Lockbox completeness for the resulting rotation (I7) is checked
// against [ScopesToRotate].
func validateRemoveMember(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	if link.UserName == action.UserName {
		return teamerr.New(teamerr.ProtocolViolation, "an admin cannot remove themselves via REMOVE_MEMBER")
	}
	if !state.Has(action.UserName) {
		return teamerr.New(teamerr.NotFound, "%s is not a member", action.UserName)
	}
	if !coversRotatedScopes(state, action.UserName, action.Lockboxes) {
		return teamerr.New(teamerr.ProtocolViolation, "REMOVE_MEMBER does not rotate every scope visible to %s", action.UserName)
	}
	return nil
}

// reduceRemoveMember deletes the member, marks it removed, and
// appends the rotation lockboxes.
func reduceRemoveMember(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	delete(next.Members, action.UserName)
	next.RemovedMembers[action.UserName] = true
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)
	return next, nil
}
