// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/invitation"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

// validatePostInvitation requires the author to be admin for a member
// invitation, or the invitation's own target (action.UserName) for a
// device invitation — "any member for a device invitation targeting
// their own devices" — and the invitation id to be unused.
func validatePostInvitation(state *TeamState, link *graph.Link, action *Action) error {
	if action.Invitation == nil {
		return teamerr.New(teamerr.ProtocolViolation, "POST_INVITATION missing an invitation")
	}
	switch action.Invitation.Type {
	case InvitationTypeMember:
		if !state.IsAdmin(link.UserName) {
			return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
		}
	case InvitationTypeDevice:
		if action.UserName != link.UserName {
			return teamerr.New(teamerr.ProtocolViolation, "a device invitation may only target the poster's own devices")
		}
		if !state.Has(link.UserName) {
			return teamerr.New(teamerr.NotFound, "%s is not a member", link.UserName)
		}
	}
	if _, exists := state.Invitations[action.Invitation.ID]; exists {
		return teamerr.New(teamerr.ProtocolViolation, "invitation %s already posted", action.Invitation.ID)
	}
	return nil
}

func reducePostInvitation(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	posted := action.Invitation.clone()
	posted.Uses = 0
	posted.Revoked = false
	next.Invitations[posted.ID] = posted
	return next, nil
}

// validateRevokeInvitation requires the author to be admin and the
// invitation to currently exist and not already be revoked.
func validateRevokeInvitation(state *TeamState, link *graph.Link, action *Action) error {
	if !state.IsAdmin(link.UserName) {
		return teamerr.New(teamerr.NotAdmin, "%s is not an admin", link.UserName)
	}
	posted, exists := state.Invitations[action.InvitationID]
	if !exists {
		return teamerr.NewInvitation(teamerr.InvitationNotFound, action.InvitationID, "invitation %s does not exist", action.InvitationID)
	}
	if posted.Revoked {
		return teamerr.NewInvitation(teamerr.InvitationRevoked, action.InvitationID, "invitation %s already revoked", action.InvitationID)
	}
	return nil
}

func reduceRevokeInvitation(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	next.Invitations[action.InvitationID].Revoked = true
	return next, nil
}

// checkPostedInvitation runs the checks ADMIT_INVITED_MEMBER and
// ADMIT_INVITED_DEVICE share: the admitter must be a current member,
// the invitation must exist, be unrevoked, unused, and unexpired as of
// link.Timestamp, and the proof it carries must verify against the
// posted invitation's own signing key — all without decrypting
// anything, so the check stays within a pure fold over the graph.
func checkPostedInvitation(state *TeamState, link *graph.Link, action *Action, wantType invitation.Kind) (*PostedInvitation, error) {
	if !state.Has(link.UserName) {
		return nil, teamerr.New(teamerr.NotFound, "%s is not a member and cannot admit", link.UserName)
	}
	posted, exists := state.Invitations[action.InvitationID]
	if !exists {
		return nil, teamerr.NewInvitation(teamerr.InvitationNotFound, action.InvitationID, "invitation %s does not exist", action.InvitationID)
	}
	if posted.Revoked {
		return nil, teamerr.NewInvitation(teamerr.InvitationRevoked, action.InvitationID, "invitation %s has been revoked", action.InvitationID)
	}
	if posted.MaxUses != 0 && posted.Uses >= posted.MaxUses {
		return nil, teamerr.NewInvitation(teamerr.InvitationUsed, action.InvitationID, "invitation %s has reached its maximum uses", action.InvitationID)
	}
	if posted.Expiration != 0 && link.Timestamp > posted.Expiration {
		return nil, teamerr.NewInvitation(teamerr.InvitationExpired, action.InvitationID, "invitation %s expired at %d", action.InvitationID, posted.Expiration)
	}
	if action.Proof == nil || action.Proof.ID != action.InvitationID || action.Proof.Type != wantType {
		return nil, teamerr.NewInvitation(teamerr.NameMismatch, action.InvitationID, "invitation %s: proof does not match this admission", action.InvitationID)
	}
	if !invitation.VerifyProof(action.Proof, posted.PublicSigningKey) {
		return nil, teamerr.NewInvitation(teamerr.InvalidSignature, action.InvitationID, "invitation %s: proof signature does not verify", action.InvitationID)
	}
	return posted, nil
}

// validateAdmitInvitedMember additionally requires the admitted
// identity to match the proof's redacted principal, the userName to be
// free, and the lockboxes to seal team and role keys to the new
// member.
func validateAdmitInvitedMember(state *TeamState, link *graph.Link, action *Action) error {
	_, err := checkPostedInvitation(state, link, action, invitation.Member)
	if err != nil {
		return err
	}
	if action.Member == nil {
		return teamerr.New(teamerr.ProtocolViolation, "ADMIT_INVITED_MEMBER missing a member")
	}
	if action.Proof.Payload.UserName != action.Member.UserName ||
		action.Proof.Payload.Signing != action.Member.Keys.Signing ||
		action.Proof.Payload.Encrypt != action.Member.Keys.Encrypt {
		return teamerr.NewInvitation(teamerr.NameMismatch, action.InvitationID, "invitation %s: admitted identity does not match the accepted proof", action.InvitationID)
	}
	if state.Has(action.Member.UserName) {
		return teamerr.New(teamerr.AlreadyMember, "%s is already a member", action.Member.UserName)
	}
	if !hasTeamAndRoleLockboxes(action.Lockboxes, action.Roles, action.Member.Keys.Encrypt) {
		return teamerr.New(teamerr.ProtocolViolation, "ADMIT_INVITED_MEMBER must seal team and role keys to the new member")
	}
	return nil
}

func reduceAdmitInvitedMember(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	member := action.Member.clone()
	member.Roles = make(map[string]bool, len(action.Roles))
	for _, role := range action.Roles {
		member.Roles[role] = true
	}
	next.Members[member.UserName] = member
	next.Invitations[action.InvitationID].Uses++
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)
	return next, nil
}

// validateAdmitInvitedDevice additionally requires the device invitation's
// target member (action.UserName) to exist, the claimed device identity
// to match the accepted proof, and the deviceId to be unused.
func validateAdmitInvitedDevice(state *TeamState, link *graph.Link, action *Action) error {
	_, err := checkPostedInvitation(state, link, action, invitation.Device)
	if err != nil {
		return err
	}
	if action.Device == nil || action.Device.DeviceID == "" {
		return teamerr.New(teamerr.ProtocolViolation, "ADMIT_INVITED_DEVICE missing a device")
	}
	if action.Proof.Payload.DeviceID != action.Device.DeviceID ||
		action.Proof.Payload.Signing != action.Device.Keys.Signing ||
		action.Proof.Payload.Encrypt != action.Device.Keys.Encrypt {
		return teamerr.NewInvitation(teamerr.NameMismatch, action.InvitationID, "invitation %s: admitted device does not match the accepted proof", action.InvitationID)
	}
	member, ok := state.MemberByName(action.UserName)
	if !ok {
		return teamerr.New(teamerr.NotFound, "%s is not a member", action.UserName)
	}
	if _, exists := member.Devices[action.Device.DeviceID]; exists {
		return teamerr.New(teamerr.ProtocolViolation, "device %q already enrolled for %s", action.Device.DeviceID, action.UserName)
	}
	return nil
}

func reduceAdmitInvitedDevice(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	member := next.Members[action.UserName]
	if member.Devices == nil {
		member.Devices = make(map[string]DevicePublic)
	}
	member.Devices[action.Device.DeviceID] = *action.Device
	next.Invitations[action.InvitationID].Uses++
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)
	return next, nil
}
