// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/keyset"
)

// Keys is a principal's public signing and encryption keys, carried
// on links, team state, and invitation proofs alike.
type Keys struct {
	Signing crypto.SigningPublicKey `cbor:"signing"`
	Encrypt crypto.EncryptPublicKey `cbor:"encrypt"`
}

// DevicePublic is one of a member's enrolled devices.
type DevicePublic struct {
	DeviceID string `cbor:"device_id"`
	Keys     Keys   `cbor:"keys"`
}

// Member is a team principal: a human (or service) identity holding
// one or more devices and zero or more roles.
type Member struct {
	UserName string                  `cbor:"user_name"`
	Keys     Keys                    `cbor:"keys"`
	Roles    map[string]bool         `cbor:"roles,omitempty"`
	Devices  map[string]DevicePublic `cbor:"devices,omitempty"`
}

// clone returns a deep-enough copy of m safe to mutate without
// aliasing the original's maps.
func (m *Member) clone() *Member {
	clone := &Member{UserName: m.UserName, Keys: m.Keys}
	if m.Roles != nil {
		clone.Roles = make(map[string]bool, len(m.Roles))
		for role := range m.Roles {
			clone.Roles[role] = true
		}
	}
	if m.Devices != nil {
		clone.Devices = make(map[string]DevicePublic, len(m.Devices))
		for id, device := range m.Devices {
			clone.Devices[id] = device
		}
	}
	return clone
}

// HasRole reports whether m belongs to roleName.
func (m *Member) HasRole(roleName string) bool {
	return m.Roles != nil && m.Roles[roleName]
}

// Role is a named permission set.
type Role struct {
	RoleName    string          `cbor:"role_name"`
	Permissions map[string]bool `cbor:"permissions,omitempty"`
}

func (r *Role) clone() *Role {
	clone := &Role{RoleName: r.RoleName}
	if r.Permissions != nil {
		clone.Permissions = make(map[string]bool, len(r.Permissions))
		for permission := range r.Permissions {
			clone.Permissions[permission] = true
		}
	}
	return clone
}

// Has reports whether r grants permission.
func (r *Role) Has(permission string) bool {
	return r.Permissions != nil && r.Permissions[permission]
}

// PostedInvitation is an invitation as it appears in team state: the
// sealed invitation plus the bookkeeping the reducer maintains
// (revoked, use count).
type PostedInvitation struct {
	ID               string                  `cbor:"id"`
	Type             InvitationType          `cbor:"type"`
	EncryptedPayload []byte                  `cbor:"encrypted_payload"`
	PublicSigningKey crypto.SigningPublicKey `cbor:"public_signing_key"`
	MaxUses          uint32                  `cbor:"max_uses"`
	Uses             uint32                  `cbor:"uses"`
	Expiration       int64                   `cbor:"expiration,omitempty"`
	Revoked          bool                    `cbor:"revoked"`
}

func (p *PostedInvitation) clone() *PostedInvitation {
	clone := *p
	clone.EncryptedPayload = append([]byte(nil), p.EncryptedPayload...)
	return &clone
}

// InvitationType mirrors [invitation.Kind] without importing the
// invitation package into team state's wire format.
type InvitationType int

const (
	InvitationTypeMember InvitationType = iota
	InvitationTypeDevice
)

// TeamState is the full reduced state of a team: spec §3's
// `{ teamName, rootContext, members, roles, lockboxes, invitations,
// removedMembers, removedDevices }`.
type TeamState struct {
	TeamName       string
	RootContext    Keys
	Members        map[string]*Member
	Roles          map[string]*Role
	Lockboxes      []*keyset.Lockbox
	Invitations    map[string]*PostedInvitation
	RemovedMembers map[string]bool
	RemovedDevices map[string]bool
}

// New returns an empty team state, ready to receive a ROOT action.
func New() *TeamState {
	return &TeamState{
		Members:        make(map[string]*Member),
		Roles:          make(map[string]*Role),
		Invitations:    make(map[string]*PostedInvitation),
		RemovedMembers: make(map[string]bool),
		RemovedDevices: make(map[string]bool),
	}
}

// clone returns a shallow-map-deep copy of state: every map is
// reallocated so mutating the clone never aliases state, but Lockbox
// and Member/Role values already immutable-by-convention are shared
// or cloned as appropriate.
func (state *TeamState) clone() *TeamState {
	next := &TeamState{
		TeamName:       state.TeamName,
		RootContext:    state.RootContext,
		Members:        make(map[string]*Member, len(state.Members)),
		Roles:          make(map[string]*Role, len(state.Roles)),
		Lockboxes:      append([]*keyset.Lockbox(nil), state.Lockboxes...),
		Invitations:    make(map[string]*PostedInvitation, len(state.Invitations)),
		RemovedMembers: make(map[string]bool, len(state.RemovedMembers)),
		RemovedDevices: make(map[string]bool, len(state.RemovedDevices)),
	}
	for name, member := range state.Members {
		next.Members[name] = member.clone()
	}
	for name, role := range state.Roles {
		next.Roles[name] = role.clone()
	}
	for id, posted := range state.Invitations {
		next.Invitations[id] = posted.clone()
	}
	for name := range state.RemovedMembers {
		next.RemovedMembers[name] = true
	}
	for id := range state.RemovedDevices {
		next.RemovedDevices[id] = true
	}
	return next
}

// MembersList returns every member, in no particular order.
func (state *TeamState) MembersList() []*Member {
	members := make([]*Member, 0, len(state.Members))
	for _, member := range state.Members {
		members = append(members, member)
	}
	return members
}

// MemberByName returns the member named userName, if present.
func (state *TeamState) MemberByName(userName string) (*Member, bool) {
	member, ok := state.Members[userName]
	return member, ok
}

// RolesList returns every role, in no particular order.
func (state *TeamState) RolesList() []*Role {
	roles := make([]*Role, 0, len(state.Roles))
	for _, role := range state.Roles {
		roles = append(roles, role)
	}
	return roles
}

// Has reports whether userName is a current (non-removed) member.
func (state *TeamState) Has(userName string) bool {
	_, ok := state.Members[userName]
	return ok
}

// IsAdmin reports whether userName is a current member holding the
// admin role.
func (state *TeamState) IsAdmin(userName string) bool {
	member, ok := state.Members[userName]
	return ok && member.HasRole(AdminRole)
}

// AdminRole is the role every team's founding ROOT action must
// create, per invariant I2.
const AdminRole = "admin"
