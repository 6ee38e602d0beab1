// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/invitation"
	"github.com/bureau-foundation/concord/lib/keyset"
)

// ActionKind discriminates the fourteen actions spec §4.D defines.
type ActionKind int

const (
	ActionRoot ActionKind = iota
	ActionAddMember
	ActionRemoveMember
	ActionAddRole
	ActionRemoveRole
	ActionAddMemberRole
	ActionRemoveMemberRole
	ActionAddDevice
	ActionRemoveDevice
	ActionPostInvitation
	ActionRevokeInvitation
	ActionAdmitInvitedMember
	ActionAdmitInvitedDevice
	ActionChangeKeys
)

// String returns the spec's SCREAMING_SNAKE_CASE name for k.
func (k ActionKind) String() string {
	switch k {
	case ActionRoot:
		return "ROOT"
	case ActionAddMember:
		return "ADD_MEMBER"
	case ActionRemoveMember:
		return "REMOVE_MEMBER"
	case ActionAddRole:
		return "ADD_ROLE"
	case ActionRemoveRole:
		return "REMOVE_ROLE"
	case ActionAddMemberRole:
		return "ADD_MEMBER_ROLE"
	case ActionRemoveMemberRole:
		return "REMOVE_MEMBER_ROLE"
	case ActionAddDevice:
		return "ADD_DEVICE"
	case ActionRemoveDevice:
		return "REMOVE_DEVICE"
	case ActionPostInvitation:
		return "POST_INVITATION"
	case ActionRevokeInvitation:
		return "REVOKE_INVITATION"
	case ActionAdmitInvitedMember:
		return "ADMIT_INVITED_MEMBER"
	case ActionAdmitInvitedDevice:
		return "ADMIT_INVITED_DEVICE"
	case ActionChangeKeys:
		return "CHANGE_KEYS"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action is the tagged variant every graph link's payload decodes
// into. Only the fields relevant to Kind are populated — see each
// action's validator in the action_*.go files for which.
type Action struct {
	Kind ActionKind `cbor:"kind"`

	TeamName   string  `cbor:"team_name,omitempty"`
	RootMember *Member `cbor:"root_member,omitempty"`

	Member   *Member  `cbor:"member,omitempty"`
	UserName string   `cbor:"user_name,omitempty"`
	Roles    []string `cbor:"roles,omitempty"`

	RoleName string `cbor:"role_name,omitempty"`
	Role     *Role  `cbor:"role,omitempty"`

	Device   *DevicePublic `cbor:"device,omitempty"`
	DeviceID string        `cbor:"device_id,omitempty"`

	Invitation   *PostedInvitation `cbor:"invitation,omitempty"`
	InvitationID string            `cbor:"invitation_id,omitempty"`
	Proof        *invitation.ProofOfInvitation `cbor:"proof,omitempty"`

	Scope            keyset.Scope            `cbor:"scope,omitempty"`
	ScopeName        string                  `cbor:"scope_name,omitempty"`
	NewSigningPublic crypto.SigningPublicKey `cbor:"new_signing_public,omitempty"`
	NewEncryptPublic crypto.EncryptPublicKey `cbor:"new_encrypt_public,omitempty"`

	Lockboxes []*keyset.Lockbox `cbor:"lockboxes,omitempty"`
}

// Encode canonically encodes a for storage as a graph.Link's payload.
func (a *Action) Encode() ([]byte, error) {
	data, err := codec.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("team: encoding %s action: %w", a.Kind, err)
	}
	return data, nil
}

// DecodeAction decodes a graph.Link's payload back into an [Action].
func DecodeAction(payload []byte) (*Action, error) {
	var action Action
	if err := codec.Unmarshal(payload, &action); err != nil {
		return nil, fmt.Errorf("team: decoding action: %w", err)
	}
	return &action, nil
}
