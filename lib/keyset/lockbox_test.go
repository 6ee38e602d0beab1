// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyset

import "testing"

func TestCreateOpenLockboxRoundTrip(t *testing.T) {
	recipient, err := Create(ScopeMember, "alice", 0, nil)
	if err != nil {
		t.Fatalf("Create recipient: %v", err)
	}
	defer recipient.Close()

	contents, err := Create(ScopeTeam, "t", 0, nil)
	if err != nil {
		t.Fatalf("Create contents: %v", err)
	}
	defer contents.Close()

	lockbox, err := CreateLockbox(contents, ReferenceOf(recipient))
	if err != nil {
		t.Fatalf("CreateLockbox: %v", err)
	}

	opened, err := OpenLockbox(lockbox, recipient.EncryptSecret)
	if err != nil {
		t.Fatalf("OpenLockbox: %v", err)
	}
	defer opened.Close()

	if opened.ID != contents.ID {
		t.Fatalf("opened.ID = %v, want %v", opened.ID, contents.ID)
	}
	if opened.SigningPublic != contents.SigningPublic {
		t.Fatal("recovered signing public key does not match original")
	}
	if opened.SigningSecret.String() != contents.SigningSecret.String() {
		t.Fatal("recovered signing secret does not match original")
	}
}

func TestOpenLockboxWrongRecipientFails(t *testing.T) {
	recipient, err := Create(ScopeMember, "alice", 0, nil)
	if err != nil {
		t.Fatalf("Create recipient: %v", err)
	}
	defer recipient.Close()

	wrong, err := Create(ScopeMember, "bob", 0, nil)
	if err != nil {
		t.Fatalf("Create wrong: %v", err)
	}
	defer wrong.Close()

	contents, err := Create(ScopeTeam, "t", 0, nil)
	if err != nil {
		t.Fatalf("Create contents: %v", err)
	}
	defer contents.Close()

	lockbox, err := CreateLockbox(contents, ReferenceOf(recipient))
	if err != nil {
		t.Fatalf("CreateLockbox: %v", err)
	}

	if _, err := OpenLockbox(lockbox, wrong.EncryptSecret); err == nil {
		t.Fatal("OpenLockbox succeeded with the wrong recipient secret")
	}
}

func TestRotateLockboxSameRecipient(t *testing.T) {
	recipient, err := Create(ScopeMember, "alice", 0, nil)
	if err != nil {
		t.Fatalf("Create recipient: %v", err)
	}
	defer recipient.Close()

	oldContents, err := Create(ScopeTeam, "t", 0, nil)
	if err != nil {
		t.Fatalf("Create oldContents: %v", err)
	}
	defer oldContents.Close()

	oldLockbox, err := CreateLockbox(oldContents, ReferenceOf(recipient))
	if err != nil {
		t.Fatalf("CreateLockbox: %v", err)
	}

	newContents, err := Create(ScopeTeam, "t", 1, nil)
	if err != nil {
		t.Fatalf("Create newContents: %v", err)
	}
	defer newContents.Close()

	rotated, err := RotateLockbox(oldLockbox, newContents)
	if err != nil {
		t.Fatalf("RotateLockbox: %v", err)
	}

	if rotated.Recipient != oldLockbox.Recipient {
		t.Fatal("RotateLockbox changed the recipient")
	}

	opened, err := OpenLockbox(rotated, recipient.EncryptSecret)
	if err != nil {
		t.Fatalf("OpenLockbox on rotated lockbox: %v", err)
	}
	defer opened.Close()

	if opened.ID.Generation != 1 {
		t.Fatalf("opened.ID.Generation = %d, want 1", opened.ID.Generation)
	}
}

func TestCreateLockboxRejectsRedactedContents(t *testing.T) {
	recipient, err := Create(ScopeMember, "alice", 0, nil)
	if err != nil {
		t.Fatalf("Create recipient: %v", err)
	}
	defer recipient.Close()

	contents, err := Create(ScopeTeam, "t", 0, nil)
	if err != nil {
		t.Fatalf("Create contents: %v", err)
	}
	defer contents.Close()
	redacted := Redact(contents)

	if _, err := CreateLockbox(redacted, ReferenceOf(recipient)); err == nil {
		t.Fatal("CreateLockbox accepted a redacted keyset")
	}
}
