// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyset

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/secret"
)

// Reference identifies a keyset by its (scope, name, generation) plus
// the encryption public key lockboxes address it by — enough
// information to seal a lockbox *to* a principal, or to name what a
// lockbox's contents *are*, without exposing any secret.
type Reference struct {
	ID            ID                      `cbor:"id"`
	EncryptPublic crypto.EncryptPublicKey `cbor:"encrypt_public"`
}

// ReferenceOf builds the public [Reference] to ks.
func ReferenceOf(ks *Keyset) Reference {
	return Reference{ID: ks.ID, EncryptPublic: ks.EncryptPublic}
}

// Lockbox seals one keyset's full secret form to another keyset's
// encryption public key. Per spec §3: a lockbox sealed *to* keyset R
// holding keyset C means any holder of R's secret encryption key may
// recover C's complete keyset. EncryptionKey is the single-use
// ephemeral sender public key [CreateLockbox] generates for this one
// seal — recorded so the recipient can reconstruct the shared secret
// without the sender's identity persisting anywhere.
type Lockbox struct {
	EncryptionKey    crypto.EncryptPublicKey `cbor:"encryption_key"`
	Recipient        Reference               `cbor:"recipient"`
	Contents         Reference               `cbor:"contents"`
	EncryptedPayload []byte                  `cbor:"encrypted_payload"`
}

// keysetWire is the canonical-encoded form of a full (secret) keyset,
// used only as the plaintext a [Lockbox] seals — never itself posted
// to the graph.
type keysetWire struct {
	ID            ID                      `cbor:"id"`
	SigningPublic crypto.SigningPublicKey `cbor:"signing_public"`
	SigningSeed   [crypto.SigningSeedSize]byte `cbor:"signing_seed"`
	EncryptPublic crypto.EncryptPublicKey `cbor:"encrypt_public"`
	EncryptSeed   [crypto.EncryptSeedSize]byte `cbor:"encrypt_seed"`
}

// CreateLockbox generates a single-use ephemeral encryption keypair,
// seals contents' full secret keyset to recipient's encryption public
// key, and returns the resulting [Lockbox].
func CreateLockbox(contents *Keyset, recipient Reference) (*Lockbox, error) {
	if contents.SigningSecret == nil || contents.EncryptSecret == nil {
		return nil, fmt.Errorf("keyset: cannot seal a redacted keyset %s into a lockbox", contents.ID)
	}

	wire := keysetWire{
		ID:            contents.ID,
		SigningPublic: contents.SigningPublic,
		EncryptPublic: contents.EncryptPublic,
	}
	copy(wire.SigningSeed[:], contents.SigningSecret.Bytes())
	copy(wire.EncryptSeed[:], contents.EncryptSecret.Bytes())

	plaintext, err := codec.Marshal(wire)
	wire.SigningSeed = [crypto.SigningSeedSize]byte{}
	wire.EncryptSeed = [crypto.EncryptSeedSize]byte{}
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("keyset: encoding keyset %s for sealing: %w", contents.ID, err)
	}

	ephemeralPublic, ephemeralSeed, err := crypto.GenerateEncryptKeypair()
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("keyset: generating ephemeral keypair for lockbox to %s: %w", recipient.ID, err)
	}
	defer ephemeralSeed.Close()

	ciphertext, err := crypto.Seal(plaintext, recipient.EncryptPublic, ephemeralSeed)
	secret.Zero(plaintext)
	if err != nil {
		return nil, fmt.Errorf("keyset: sealing keyset %s to %s: %w", contents.ID, recipient.ID, err)
	}

	return &Lockbox{
		EncryptionKey:    ephemeralPublic,
		Recipient:        recipient,
		Contents:         ReferenceOf(contents),
		EncryptedPayload: ciphertext,
	}, nil
}

// OpenLockbox unseals lb using recipientSecret, the encryption secret
// scalar of the keyset lb.Recipient names, and returns the full
// secret keyset it contained.
func OpenLockbox(lb *Lockbox, recipientSecret *secret.Buffer) (*Keyset, error) {
	plaintext, err := crypto.Unseal(lb.EncryptedPayload, lb.EncryptionKey, recipientSecret)
	if err != nil {
		return nil, fmt.Errorf("keyset: opening lockbox for %s: %w", lb.Contents.ID, err)
	}
	defer plaintext.Close()

	var wire keysetWire
	if err := codec.Unmarshal(plaintext.Bytes(), &wire); err != nil {
		return nil, fmt.Errorf("keyset: decoding lockbox contents for %s: %w", lb.Contents.ID, err)
	}

	signingSeed, err := secret.NewFromBytes(append([]byte(nil), wire.SigningSeed[:]...))
	wire.SigningSeed = [crypto.SigningSeedSize]byte{}
	if err != nil {
		wire.EncryptSeed = [crypto.EncryptSeedSize]byte{}
		return nil, fmt.Errorf("keyset: protecting recovered signing seed for %s: %w", wire.ID, err)
	}
	encryptSeed, err := secret.NewFromBytes(append([]byte(nil), wire.EncryptSeed[:]...))
	wire.EncryptSeed = [crypto.EncryptSeedSize]byte{}
	if err != nil {
		signingSeed.Close()
		return nil, fmt.Errorf("keyset: protecting recovered encryption seed for %s: %w", wire.ID, err)
	}

	return &Keyset{
		ID:            wire.ID,
		SigningPublic: wire.SigningPublic,
		SigningSecret: signingSeed,
		EncryptPublic: wire.EncryptPublic,
		EncryptSecret: encryptSeed,
	}, nil
}

// RotateLockbox yields a lockbox addressed to the same recipient
// public key as oldLockbox but sealing newContents — used whenever a
// scope rotates (spec §4.D's scopesToRotate) and every existing
// holder needs a fresh lockbox for the rotated keyset.
func RotateLockbox(oldLockbox *Lockbox, newContents *Keyset) (*Lockbox, error) {
	return CreateLockbox(newContents, oldLockbox.Recipient)
}
