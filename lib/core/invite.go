// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/invitation"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/team"
)

// generateSecretKey mints a fresh human-copyable invitation secret
// when the caller doesn't supply one — 20 random bytes, base32
// encoded without padding. invitation.normalizeSecretKey lowercases
// and strips punctuation anyway, so the caller is free to re-type it
// with dashes for readability ("abcd-efgh-ijkl-mnop" in spec §8's
// scenario 1 is exactly this shape).
func generateSecretKey() (string, error) {
	raw, err := crypto.Random(20)
	if err != nil {
		return "", fmt.Errorf("core: generating invitation secret: %w", err)
	}
	return strings.ToLower(base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)), nil
}

// teamAEADKey returns the team keyset's encryption secret, used
// directly as a symmetric AEAD key for sealing and opening invitation
// payloads — spec §4.E's "seals the payload with the team keys
// (AEAD)". Unlike a lockbox, which ECIES-seals to one recipient's
// encryption public key, an invitation must be openable by whichever
// admitting member later validates it against team state, so it is
// sealed under the team's own shared secret instead.
func (t *Team) teamAEADKey() (*keyset.Keyset, error) {
	return t.keyring.Lookup(keyset.ScopeTeam, t.state.TeamName)
}

// InviteMemberParams carries the fields spec §6's `inviteMember`
// takes. UserName fixes the invitee's user name up front — invitation
// soundness (spec §7: `validate(accept(sk,X), create(sk,Y)).isValid
// ⇔ X.userName == Y.userName`) requires the posted invitation to name
// who it admits, even though it says nothing about their keys until
// accept time.
type InviteMemberParams struct {
	UserName   string
	Seed       string
	MaxUses    uint32
	Expiration int64
	Roles      []string
}

// InvitationResult is what InviteMember/InviteDevice return: the
// invitation's id (public, safe to log) and the secret key the
// invitee needs out of band to accept it.
type InvitationResult struct {
	InvitationID string
	Secret       string
}

// InviteMember posts a member invitation, per spec §6's
// `inviteMember({seed?, maxUses?, expiration?})`.
func (t *Team) InviteMember(params InviteMemberParams) (*InvitationResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	secretKey := params.Seed
	if secretKey == "" {
		var err error
		secretKey, err = generateSecretKey()
		if err != nil {
			return nil, err
		}
	}

	teamKey, err := t.teamAEADKey()
	if err != nil {
		return nil, fmt.Errorf("core: looking up team key: %w", err)
	}
	posted, err := invitation.Create(teamKey.EncryptSecret, invitation.CreateParams{
		UserName:   params.UserName,
		SecretKey:  secretKey,
		MaxUses:    params.MaxUses,
		Expiration: params.Expiration,
		Roles:      params.Roles,
	})
	if err != nil {
		return nil, fmt.Errorf("core: creating member invitation: %w", err)
	}

	action := &team.Action{
		Kind: team.ActionPostInvitation,
		Invitation: &team.PostedInvitation{
			ID:               posted.ID,
			Type:             team.InvitationTypeMember,
			EncryptedPayload: posted.EncryptedPayload,
			PublicSigningKey: posted.PublicSigningKey,
			MaxUses:          posted.MaxUses,
			Expiration:       posted.Expiration,
		},
	}
	if err := t.append(action); err != nil {
		return nil, err
	}
	return &InvitationResult{InvitationID: posted.ID, Secret: secretKey}, nil
}

// InviteDeviceParams carries the fields spec §6's `inviteDevice`
// takes — issued by a member to enroll one of their own additional
// devices.
type InviteDeviceParams struct {
	DeviceID   string
	Seed       string
	MaxUses    uint32
	Expiration int64
}

// InviteDevice posts a device invitation targeting one of the calling
// member's own devices, per spec §6's `inviteDevice({seed?})`.
func (t *Team) InviteDevice(params InviteDeviceParams) (*InvitationResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	secretKey := params.Seed
	if secretKey == "" {
		var err error
		secretKey, err = generateSecretKey()
		if err != nil {
			return nil, err
		}
	}

	teamKey, err := t.teamAEADKey()
	if err != nil {
		return nil, fmt.Errorf("core: looking up team key: %w", err)
	}
	posted, err := invitation.Create(teamKey.EncryptSecret, invitation.CreateParams{
		DeviceID:   params.DeviceID,
		SecretKey:  secretKey,
		MaxUses:    params.MaxUses,
		Expiration: params.Expiration,
	})
	if err != nil {
		return nil, fmt.Errorf("core: creating device invitation: %w", err)
	}

	action := &team.Action{
		Kind:     team.ActionPostInvitation,
		UserName: t.userName,
		Invitation: &team.PostedInvitation{
			ID:               posted.ID,
			Type:             team.InvitationTypeDevice,
			EncryptedPayload: posted.EncryptedPayload,
			PublicSigningKey: posted.PublicSigningKey,
			MaxUses:          posted.MaxUses,
			Expiration:       posted.Expiration,
		},
	}
	if err := t.append(action); err != nil {
		return nil, err
	}
	return &InvitationResult{InvitationID: posted.ID, Secret: secretKey}, nil
}

// RevokeInvitation revokes a posted invitation so no further
// admission can use it, per spec §6's `revokeInvitation(id)`.
func (t *Team) RevokeInvitation(invitationID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.append(&team.Action{Kind: team.ActionRevokeInvitation, InvitationID: invitationID})
}

// AdmitParams carries what Admit needs: the accepted proof plus the
// newcomer's full public identity and the roles the original
// invitation granted (recovered by decrypting the posted invitation
// with the team key — see [Team.RolesFor]).
type AdmitParams struct {
	Proof  *invitation.ProofOfInvitation
	Member *team.Member
	Roles  []string
}

// Admit posts ADMIT_INVITED_MEMBER admitting a newcomer who presented
// proof, per spec §6's `admit(proof)`. The caller is expected to have
// already run the newcomer through [lib/connection]'s identity claim
// exchange, so Member carries their now-known public keys and device.
func (t *Team) Admit(params AdmitParams) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.validateProof(params.Proof); err != nil {
		return err
	}

	member := &team.Member{
		UserName: params.Member.UserName,
		Keys:     params.Member.Keys,
		Devices:  params.Member.Devices,
	}
	lockboxes, err := t.sealTeamAndRoles(params.Roles, member.Keys.Encrypt)
	if err != nil {
		return err
	}

	return t.append(&team.Action{
		Kind:         team.ActionAdmitInvitedMember,
		InvitationID: params.Proof.ID,
		Proof:        params.Proof,
		Member:       member,
		Roles:        params.Roles,
		Lockboxes:    lockboxes,
	})
}

// AdmitDeviceParams carries what AdmitDevice needs.
type AdmitDeviceParams struct {
	Proof    *invitation.ProofOfInvitation
	UserName string
	Device   *team.DevicePublic
}

// AdmitDevice posts ADMIT_INVITED_DEVICE enrolling a new device for an
// existing member, per spec §6's `admitDevice(proof)`. A device
// admission carries no lockboxes, and no keyring is sent to the new
// device by any other route: [lib/connection]'s ACCEPT_INVITATION
// hands it only the serialized graph, in which no lockbox is sealed to
// the new device's keys.
func (t *Team) AdmitDevice(params AdmitDeviceParams) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.validateProof(params.Proof); err != nil {
		return err
	}

	return t.append(&team.Action{
		Kind:         team.ActionAdmitInvitedDevice,
		InvitationID: params.Proof.ID,
		Proof:        params.Proof,
		UserName:     params.UserName,
		Device:       params.Device,
	})
}

// RolesFor decrypts a posted invitation's payload with the team key
// and returns the roles it grants — spec §4.E's `roles(postedInvitation,
// teamKeys)`, exposed so a host admitting a member knows what to seal
// into the ADMIT_INVITED_MEMBER action without re-deriving it itself.
func (t *Team) RolesFor(invitationID string) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	posted, teamKey, err := t.lookupInvitation(invitationID)
	if err != nil {
		return nil, err
	}
	return invitation.Roles(posted, teamKey.EncryptSecret)
}

// lookupInvitation finds invitationID in team state and returns it
// alongside the team key needed to open its sealed payload.
func (t *Team) lookupInvitation(invitationID string) (*invitation.Invitation, *keyset.Keyset, error) {
	posted, ok := t.state.Invitations[invitationID]
	if !ok {
		return nil, nil, fmt.Errorf("core: invitation %s does not exist", invitationID)
	}
	teamKey, err := t.teamAEADKey()
	if err != nil {
		return nil, nil, fmt.Errorf("core: looking up team key: %w", err)
	}
	return &invitation.Invitation{
		ID:               posted.ID,
		EncryptedPayload: posted.EncryptedPayload,
		PublicSigningKey: posted.PublicSigningKey,
		MaxUses:          posted.MaxUses,
		Expiration:       posted.Expiration,
	}, teamKey, nil
}

// validateProof re-runs spec §7's soundness check — the claimed
// identity in proof must match the userName/deviceId the invitation
// was originally created for, not merely whatever the admitting host
// was handed — before the admission action is ever posted.
// [team.validateAdmitInvitedMember]/[team.validateAdmitInvitedDevice]
// only compare the proof against the *action*'s own claimed Member/
// Device fields, which a misbehaving or compromised admitting host
// controls; this is the check that is grounded in the invitation's own
// sealed payload instead, closing that gap.
func (t *Team) validateProof(proof *invitation.ProofOfInvitation) error {
	posted, teamKey, err := t.lookupInvitation(proof.ID)
	if err != nil {
		return err
	}
	uses := t.state.Invitations[proof.ID].Uses
	return invitation.Validate(proof, posted, teamKey.EncryptSecret, uses, t.clock())
}
