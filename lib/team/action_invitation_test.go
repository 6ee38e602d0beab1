// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/invitation"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/secret"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

func newTestTeamKey(t *testing.T) *secret.Buffer {
	t.Helper()
	key, err := secret.NewFromBytes(make([]byte, crypto.AEADKeySize))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	return key
}

// postedInvitationAction builds a POST_INVITATION action wrapping a
// real [invitation.Invitation] and returns it alongside its
// PostedInvitation form for convenience.
func postedInvitationAction(t *testing.T, teamKey *secret.Buffer, params invitation.CreateParams) (*Action, *invitation.Invitation) {
	t.Helper()
	posted, err := invitation.Create(teamKey, params)
	if err != nil {
		t.Fatalf("invitation.Create: %v", err)
	}
	kind := InvitationTypeMember
	userName := params.UserName
	if params.DeviceID != "" {
		kind = InvitationTypeDevice
	}
	action := &Action{
		Kind:     ActionPostInvitation,
		UserName: userName,
		Invitation: &PostedInvitation{
			ID:               posted.ID,
			Type:             kind,
			EncryptedPayload: posted.EncryptedPayload,
			PublicSigningKey: posted.PublicSigningKey,
			MaxUses:          posted.MaxUses,
			Expiration:       posted.Expiration,
		},
	}
	return action, posted
}

func TestReduceAdmitInvitedMember(t *testing.T) {
	g, admin := newFoundedTeam(t, "acme")
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	postAction, posted := postedInvitationAction(t, teamKey, invitation.CreateParams{
		UserName: "bob", SecretKey: "open-sesame", MaxUses: 1, Roles: []string{"guest"},
	})
	admin.append(t, g, 2, postAction)

	admin.append(t, g, 3, &Action{Kind: ActionAddRole, Role: &Role{RoleName: "guest"}})

	bobSigning, _, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	bobEncrypt, _, err := crypto.GenerateEncryptKeypair()
	if err != nil {
		t.Fatalf("GenerateEncryptKeypair: %v", err)
	}
	proof, err := invitation.Accept("open-sesame", invitation.Member, invitation.RedactedPrincipal{
		UserName: "bob", Signing: bobSigning, Encrypt: bobEncrypt,
	})
	if err != nil {
		t.Fatalf("invitation.Accept: %v", err)
	}

	bobKeys := Keys{Signing: bobSigning, Encrypt: bobEncrypt}
	admin.append(t, g, 4, &Action{
		Kind:         ActionAdmitInvitedMember,
		InvitationID: posted.ID,
		Member:       &Member{UserName: "bob", Keys: bobKeys},
		Roles:        []string{"guest"},
		Proof:        proof,
		Lockboxes: []*keyset.Lockbox{
			lockboxTo(t, keyset.ScopeTeam, "acme", bobKeys),
			lockboxTo(t, keyset.ScopeRole, "guest", bobKeys),
		},
	})

	state, err := Reduce(sequenceAll(t, g))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	member, ok := state.MemberByName("bob")
	if !ok {
		t.Fatal("bob should have been admitted")
	}
	if !member.HasRole("guest") {
		t.Fatal("bob should hold the guest role granted by the invitation")
	}
	if state.Invitations[posted.ID].Uses != 1 {
		t.Fatalf("invitation uses = %d, want 1", state.Invitations[posted.ID].Uses)
	}
}

func TestReduceAdmitInvitedMemberRejectsForgedProof(t *testing.T) {
	g, admin := newFoundedTeam(t, "acme")
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	postAction, posted := postedInvitationAction(t, teamKey, invitation.CreateParams{
		UserName: "bob", SecretKey: "open-sesame", MaxUses: 1,
	})
	admin.append(t, g, 2, postAction)

	bobSigning, _, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	bobEncrypt, _, err := crypto.GenerateEncryptKeypair()
	if err != nil {
		t.Fatalf("GenerateEncryptKeypair: %v", err)
	}
	// forged: accepted with the wrong secret key entirely.
	forgedProof, err := invitation.Accept("wrong-password", invitation.Member, invitation.RedactedPrincipal{
		UserName: "bob", Signing: bobSigning, Encrypt: bobEncrypt,
	})
	if err != nil {
		t.Fatalf("invitation.Accept: %v", err)
	}

	bobKeys := Keys{Signing: bobSigning, Encrypt: bobEncrypt}
	admin.append(t, g, 3, &Action{
		Kind: ActionAdmitInvitedMember, InvitationID: posted.ID,
		Member: &Member{UserName: "bob", Keys: bobKeys}, Proof: forgedProof,
		Lockboxes: []*keyset.Lockbox{lockboxTo(t, keyset.ScopeTeam, "acme", bobKeys)},
	})

	_, err = Reduce(sequenceAll(t, g))
	var teamErr *teamerr.Error
	if !errors.As(err, &teamErr) || (teamErr.Kind != teamerr.NameMismatch && teamErr.Kind != teamerr.InvalidSignature) {
		t.Fatalf("Reduce error = %v, want NameMismatch or InvalidSignature", err)
	}
}

func TestReduceAdmitInvitedMemberRejectsExhaustedInvitation(t *testing.T) {
	g, admin := newFoundedTeam(t, "acme")
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	postAction, posted := postedInvitationAction(t, teamKey, invitation.CreateParams{
		UserName: "bob", SecretKey: "open-sesame", MaxUses: 1,
	})
	admin.append(t, g, 2, postAction)

	bobSigning, _, _ := crypto.GenerateSigningKeypair()
	bobEncrypt, _, _ := crypto.GenerateEncryptKeypair()
	proof, err := invitation.Accept("open-sesame", invitation.Member, invitation.RedactedPrincipal{
		UserName: "bob", Signing: bobSigning, Encrypt: bobEncrypt,
	})
	if err != nil {
		t.Fatalf("invitation.Accept: %v", err)
	}
	bobKeys := Keys{Signing: bobSigning, Encrypt: bobEncrypt}
	admin.append(t, g, 3, &Action{
		Kind: ActionAdmitInvitedMember, InvitationID: posted.ID,
		Member: &Member{UserName: "bob", Keys: bobKeys}, Proof: proof,
		Lockboxes: []*keyset.Lockbox{lockboxTo(t, keyset.ScopeTeam, "acme", bobKeys)},
	})

	state, err := Reduce(sequenceAll(t, g))
	if err != nil {
		t.Fatalf("Reduce (first admission): %v", err)
	}
	if !state.Has("bob") {
		t.Fatal("bob should have been admitted")
	}

	// carol tries to reuse the same, now-exhausted invitation.
	carolSigning, _, _ := crypto.GenerateSigningKeypair()
	carolEncrypt, _, _ := crypto.GenerateEncryptKeypair()
	carolProof, err := invitation.Accept("open-sesame", invitation.Member, invitation.RedactedPrincipal{
		UserName: "carol", Signing: carolSigning, Encrypt: carolEncrypt,
	})
	if err != nil {
		t.Fatalf("invitation.Accept: %v", err)
	}
	carolKeys := Keys{Signing: carolSigning, Encrypt: carolEncrypt}
	admin.append(t, g, 4, &Action{
		Kind: ActionAdmitInvitedMember, InvitationID: posted.ID,
		Member: &Member{UserName: "carol", Keys: carolKeys}, Proof: carolProof,
		Lockboxes: []*keyset.Lockbox{lockboxTo(t, keyset.ScopeTeam, "acme", carolKeys)},
	})

	_, err = Reduce(sequenceAll(t, g))
	if !errors.Is(err, teamerr.Of(teamerr.InvitationUsed)) {
		t.Fatalf("Reduce error = %v, want InvitationUsed", err)
	}
}

func TestReduceRevokeInvitation(t *testing.T) {
	g, admin := newFoundedTeam(t, "acme")
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	postAction, posted := postedInvitationAction(t, teamKey, invitation.CreateParams{UserName: "bob", SecretKey: "s", MaxUses: 1})
	admin.append(t, g, 2, postAction)
	admin.append(t, g, 3, &Action{Kind: ActionRevokeInvitation, InvitationID: posted.ID})

	state, err := Reduce(sequenceAll(t, g))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if !state.Invitations[posted.ID].Revoked {
		t.Fatal("invitation should be revoked")
	}

	bobSigning, _, _ := crypto.GenerateSigningKeypair()
	bobEncrypt, _, _ := crypto.GenerateEncryptKeypair()
	proof, err := invitation.Accept("s", invitation.Member, invitation.RedactedPrincipal{UserName: "bob", Signing: bobSigning, Encrypt: bobEncrypt})
	if err != nil {
		t.Fatalf("invitation.Accept: %v", err)
	}
	bobKeys := Keys{Signing: bobSigning, Encrypt: bobEncrypt}
	admin.append(t, g, 4, &Action{
		Kind: ActionAdmitInvitedMember, InvitationID: posted.ID,
		Member: &Member{UserName: "bob", Keys: bobKeys}, Proof: proof,
		Lockboxes: []*keyset.Lockbox{lockboxTo(t, keyset.ScopeTeam, "acme", bobKeys)},
	})

	_, err = Reduce(sequenceAll(t, g))
	if !errors.Is(err, teamerr.Of(teamerr.InvitationRevoked)) {
		t.Fatalf("Reduce error = %v, want InvitationRevoked", err)
	}
}

func TestReducePostDeviceInvitationRequiresSelf(t *testing.T) {
	g, admin := newFoundedTeam(t, "acme")
	bob := newTestDevice(t, "bob", "bob-phone")
	admin.append(t, g, 2, &Action{
		Kind: ActionAddMember, Member: &Member{UserName: bob.userName, Keys: bob.keys},
		Lockboxes: []*keyset.Lockbox{lockboxTo(t, keyset.ScopeTeam, "acme", bob.keys)},
	})

	teamKey := newTestTeamKey(t)
	defer teamKey.Close()
	postAction, _ := postedInvitationAction(t, teamKey, invitation.CreateParams{DeviceID: "bob-tablet", SecretKey: "s", MaxUses: 1})
	// admin tries to post a device invitation naming bob as the
	// target, despite not being bob.
	postAction.UserName = bob.userName
	admin.append(t, g, 3, postAction)

	_, err := Reduce(sequenceAll(t, g))
	var teamErr *teamerr.Error
	if !errors.As(err, &teamErr) || teamErr.Kind != teamerr.ProtocolViolation {
		t.Fatalf("Reduce error = %v, want ProtocolViolation", err)
	}
}

func TestReduceAdmitInvitedDevice(t *testing.T) {
	g, admin := newFoundedTeam(t, "acme")
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	postAction, posted := postedInvitationAction(t, teamKey, invitation.CreateParams{DeviceID: "admin-phone", SecretKey: "s", MaxUses: 1})
	postAction.UserName = admin.userName
	admin.append(t, g, 2, postAction)

	phoneSigning, _, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	phoneEncrypt, _, err := crypto.GenerateEncryptKeypair()
	if err != nil {
		t.Fatalf("GenerateEncryptKeypair: %v", err)
	}
	proof, err := invitation.Accept("s", invitation.Device, invitation.RedactedPrincipal{
		DeviceID: "admin-phone", Signing: phoneSigning, Encrypt: phoneEncrypt,
	})
	if err != nil {
		t.Fatalf("invitation.Accept: %v", err)
	}

	phoneKeys := Keys{Signing: phoneSigning, Encrypt: phoneEncrypt}
	admin.append(t, g, 3, &Action{
		Kind:         ActionAdmitInvitedDevice,
		InvitationID: posted.ID,
		UserName:     admin.userName,
		Device:       &DevicePublic{DeviceID: "admin-phone", Keys: phoneKeys},
		Proof:        proof,
		Lockboxes: []*keyset.Lockbox{
			lockboxTo(t, keyset.ScopeTeam, "acme", phoneKeys),
			lockboxTo(t, keyset.ScopeRole, AdminRole, phoneKeys),
		},
	})

	state, err := Reduce(sequenceAll(t, g))
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	member, _ := state.MemberByName(admin.userName)
	if _, ok := member.Devices["admin-phone"]; !ok {
		t.Fatal("admin-phone should have been enrolled")
	}
	if state.Invitations[posted.ID].Uses != 1 {
		t.Fatalf("invitation uses = %d, want 1", state.Invitations[posted.ID].Uses)
	}
}

