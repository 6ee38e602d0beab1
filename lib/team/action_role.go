// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

func validateAddRole(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	if action.Role == nil || action.Role.RoleName == "" {
		return teamerr.New(teamerr.ProtocolViolation, "ADD_ROLE missing a role")
	}
	if _, exists := state.Roles[action.Role.RoleName]; exists {
		return teamerr.New(teamerr.ProtocolViolation, "role %q already exists", action.Role.RoleName)
	}
	return nil
}

func reduceAddRole(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	next.Roles[action.Role.RoleName] = action.Role.clone()
	return next, nil
}

// validateRemoveRole forbids removing the admin role (invariant I2
// requires it always exist and be non-empty) and requires the role to
// exist and currently have no members.
func validateRemoveRole(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	if action.RoleName == AdminRole {
		return teamerr.New(teamerr.ProtocolViolation, "the admin role cannot be removed")
	}
	if _, exists := state.Roles[action.RoleName]; !exists {
		return teamerr.New(teamerr.NotFound, "role %q does not exist", action.RoleName)
	}
	for _, member := range state.Members {
		if member.HasRole(action.RoleName) {
			return teamerr.New(teamerr.ProtocolViolation, "role %q still has members; remove them first", action.RoleName)
		}
	}
	return nil
}

func reduceRemoveRole(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	delete(next.Roles, action.RoleName)
	return next, nil
}

func validateAddMemberRole(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	member, ok := state.MemberByName(action.UserName)
	if !ok {
		return teamerr.New(teamerr.NotFound, "%s is not a member", action.UserName)
	}
	if _, exists := state.Roles[action.RoleName]; !exists {
		return teamerr.New(teamerr.NotFound, "role %q does not exist", action.RoleName)
	}
	if member.HasRole(action.RoleName) {
		return teamerr.New(teamerr.ProtocolViolation, "%s already holds role %q", action.UserName, action.RoleName)
	}
	if !hasLockboxForName(action.Lockboxes, keyset.ScopeRole, action.RoleName, member.Keys.Encrypt) {
		return teamerr.New(teamerr.ProtocolViolation, "ADD_MEMBER_ROLE must seal the role's keys to the member")
	}
	return nil
}

func reduceAddMemberRole(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	member := next.Members[action.UserName]
	if member.Roles == nil {
		member.Roles = make(map[string]bool)
	}
	member.Roles[action.RoleName] = true
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)
	return next, nil
}

// validateRemoveMemberRole requires the target to currently hold the
// role being removed, and if it is the admin role, requires at least
// one other admin remain (invariant I2).
func validateRemoveMemberRole(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	member, ok := state.MemberByName(action.UserName)
	if !ok {
		return teamerr.New(teamerr.NotFound, "%s is not a member", action.UserName)
	}
	if !member.HasRole(action.RoleName) {
		return teamerr.New(teamerr.ProtocolViolation, "%s does not hold role %q", action.UserName, action.RoleName)
	}
	if action.RoleName == AdminRole && countAdmins(state) <= 1 {
		return teamerr.New(teamerr.ProtocolViolation, "cannot remove the last admin's admin role")
	}
	return nil
}

func reduceRemoveMemberRole(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	delete(next.Members[action.UserName].Roles, action.RoleName)
	return next, nil
}

func countAdmins(state *TeamState) int {
	count := 0
	for _, member := range state.Members {
		if member.HasRole(AdminRole) {
			count++
		}
	}
	return count
}
