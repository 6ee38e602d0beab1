// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/bureau-foundation/concord/lib/secret"
)

// SigningPublicKeySize is the size in bytes of a [SigningPublicKey].
const SigningPublicKeySize = ed25519.PublicKeySize

// SigningSeedSize is the size in bytes of the seed a signing keypair
// is deterministically derived from.
const SigningSeedSize = ed25519.SeedSize

// SignatureSize is the size in bytes of a [Signature].
const SignatureSize = ed25519.SignatureSize

// SigningPublicKey is an Ed25519 verification key.
type SigningPublicKey [SigningPublicKeySize]byte

// Signature is an Ed25519 signature.
type Signature [SignatureSize]byte

// GenerateSigningKeypair creates a new Ed25519 keypair from the
// system CSPRNG. The private key is returned as a 32-byte seed held
// in a [secret.Buffer] — the same seed [SigningKeypairFromSeed]
// accepts, so a keypair generated here and one derived later from a
// recorded seed are interchangeable.
func GenerateSigningKeypair() (SigningPublicKey, *secret.Buffer, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return SigningPublicKey{}, nil, fmt.Errorf("crypto: generating Ed25519 keypair: %w", err)
	}
	seed := append([]byte(nil), private.Seed()...)
	seedBuffer, err := secret.NewFromBytes(seed)
	if err != nil {
		return SigningPublicKey{}, nil, fmt.Errorf("crypto: protecting signing seed: %w", err)
	}

	var publicKey SigningPublicKey
	copy(publicKey[:], public)
	return publicKey, seedBuffer, nil
}

// SigningKeypairFromSeed deterministically derives an Ed25519 keypair
// from a 32-byte seed, such as one produced by [Stretch]. The same
// seed always yields the same keypair.
func SigningKeypairFromSeed(seed *secret.Buffer) (SigningPublicKey, error) {
	if seed.Len() != SigningSeedSize {
		return SigningPublicKey{}, fmt.Errorf("crypto: signing seed has %d bytes, want %d", seed.Len(), SigningSeedSize)
	}
	private := ed25519.NewKeyFromSeed(seed.Bytes())
	public := private.Public().(ed25519.PublicKey)

	var publicKey SigningPublicKey
	copy(publicKey[:], public)
	return publicKey, nil
}

// Sign signs message with the Ed25519 private key derived from seed.
func Sign(seed *secret.Buffer, message []byte) (Signature, error) {
	if seed.Len() != SigningSeedSize {
		return Signature{}, fmt.Errorf("crypto: signing seed has %d bytes, want %d", seed.Len(), SigningSeedSize)
	}
	private := ed25519.NewKeyFromSeed(seed.Bytes())
	var signature Signature
	copy(signature[:], ed25519.Sign(private, message))
	return signature, nil
}

// Verify reports whether signature is a valid Ed25519 signature over
// message under public.
func Verify(public SigningPublicKey, message []byte, signature Signature) bool {
	return ed25519.Verify(ed25519.PublicKey(public[:]), message, signature[:])
}
