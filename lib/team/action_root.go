// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

// validateRoot enforces that ROOT is only ever the first link: prior
// state must be empty, the link must be a graph root, and the
// founding member must carry the admin role (invariant I2) with team
// and admin keys sealed to them.
func validateRoot(state *TeamState, link *graph.Link, action *Action) error {
	if link.Kind != graph.Root {
		return teamerr.New(teamerr.ProtocolViolation, "ROOT action on a non-root graph link")
	}
	if state.TeamName != "" || len(state.Members) != 0 {
		return teamerr.New(teamerr.ProtocolViolation, "ROOT action on an already-initialized team")
	}
	if action.RootMember == nil {
		return teamerr.New(teamerr.ProtocolViolation, "ROOT action missing a founding member")
	}
	if !action.RootMember.HasRole(AdminRole) {
		return teamerr.New(teamerr.ProtocolViolation, "ROOT action's founding member must hold the admin role")
	}
	if !hasTeamAndAdminLockboxes(action.Lockboxes, action.RootMember.Keys.Encrypt) {
		return teamerr.New(teamerr.ProtocolViolation, "ROOT action must seal team and admin keys to the founding member")
	}
	return nil
}

// reduceRoot initializes state from the founding member.
func reduceRoot(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := New()
	next.TeamName = action.TeamName
	next.RootContext = action.RootMember.Keys
	next.Members[action.RootMember.UserName] = action.RootMember.clone()
	next.Roles[AdminRole] = &Role{RoleName: AdminRole, Permissions: map[string]bool{"*": true}}
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)
	return next, nil
}
