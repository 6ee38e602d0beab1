// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invitation

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/concord/lib/crypto"
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

func TestNormalizeSecretKeyStripsPunctuationAndCase(t *testing.T) {
	if got := normalizeSecretKey("abcd-efgh-ijkl-mnop"); got != "abcdefghijklmnop" {
		t.Fatalf("normalizeSecretKey = %q", got)
	}
	if got := normalizeSecretKey("ABCD EFGH IJKL MNOP"); got != "abcdefghijklmnop" {
		t.Fatalf("normalizeSecretKey = %q", got)
	}
}

func TestCreateAcceptValidateRoundTrip(t *testing.T) {
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	posted, err := Create(teamKey, CreateParams{UserName: "bob", SecretKey: "abcd-efgh-ijkl-mnop", MaxUses: 1, Roles: []string{"guest"}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	bobPublic, _, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	bobEncryptPublic, _, err := crypto.GenerateEncryptKeypair()
	if err != nil {
		t.Fatalf("GenerateEncryptKeypair: %v", err)
	}

	proof, err := Accept("abcd-efgh-ijkl-mnop", Member, RedactedPrincipal{UserName: "bob", Signing: bobPublic, Encrypt: bobEncryptPublic})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if err := Validate(proof, posted, teamKey, 0, 0); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	roles, err := Roles(posted, teamKey)
	if err != nil {
		t.Fatalf("Roles: %v", err)
	}
	if len(roles) != 1 || roles[0] != "guest" {
		t.Fatalf("Roles = %v, want [guest]", roles)
	}
}

func TestValidateRejectsNameMismatch(t *testing.T) {
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	posted, err := Create(teamKey, CreateParams{UserName: "bob", SecretKey: "s", MaxUses: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	evePublic, _, err := crypto.GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	proof, err := Accept("s", Member, RedactedPrincipal{UserName: "eve", Signing: evePublic})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	err = Validate(proof, posted, teamKey, 0, 0)
	if !errors.Is(err, teamerr.Of(teamerr.NameMismatch)) {
		t.Fatalf("Validate error = %v, want NameMismatch", err)
	}
}

func TestValidateRejectsExhaustedUses(t *testing.T) {
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	posted, err := Create(teamKey, CreateParams{UserName: "bob", SecretKey: "s", MaxUses: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	proof, err := Accept("s", Member, RedactedPrincipal{UserName: "bob"})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	err = Validate(proof, posted, teamKey, 1, 0)
	if !errors.Is(err, teamerr.Of(teamerr.InvitationUsed)) {
		t.Fatalf("Validate error = %v, want InvitationUsed", err)
	}
}

func TestValidateRejectsExpiredInvitation(t *testing.T) {
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	posted, err := Create(teamKey, CreateParams{UserName: "bob", SecretKey: "s", MaxUses: 1, Expiration: 100})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	proof, err := Accept("s", Member, RedactedPrincipal{UserName: "bob"})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	err = Validate(proof, posted, teamKey, 0, 200)
	if !errors.Is(err, teamerr.Of(teamerr.InvitationExpired)) {
		t.Fatalf("Validate error = %v, want InvitationExpired", err)
	}
}

func TestValidateRejectsWrongSecretKey(t *testing.T) {
	teamKey := newTestTeamKey(t)
	defer teamKey.Close()

	posted, err := Create(teamKey, CreateParams{UserName: "bob", SecretKey: "correct-horse", MaxUses: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	proof, err := Accept("wrong-battery", Member, RedactedPrincipal{UserName: "bob"})
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}

	err = Validate(proof, posted, teamKey, 0, 0)
	if err == nil {
		t.Fatal("Validate should reject a proof derived from the wrong secret key")
	}
}
