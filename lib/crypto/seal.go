// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/bureau-foundation/concord/lib/secret"
)

// EncryptPublicKeySize is the size in bytes of an [EncryptPublicKey].
const EncryptPublicKeySize = 32

// EncryptSeedSize is the size in bytes of the seed an encryption
// keypair is deterministically derived from.
const EncryptSeedSize = 32

// EncryptPublicKey is an X25519 public key.
type EncryptPublicKey [EncryptPublicKeySize]byte

// sealInfo is the HKDF info string binding subkey derivation to its
// one use, so a key derived here can never be reused as an AEAD key
// derived somewhere else in concord from the same shared secret.
const sealInfo = "concord.seal.v1"

// GenerateEncryptKeypair creates a new X25519 keypair from the system
// CSPRNG. The private scalar is returned as a 32-byte seed held in a
// [secret.Buffer], interchangeable with one produced by
// [EncryptKeypairFromSeed].
func GenerateEncryptKeypair() (EncryptPublicKey, *secret.Buffer, error) {
	seed := make([]byte, EncryptSeedSize)
	if _, err := rand.Read(seed); err != nil {
		return EncryptPublicKey{}, nil, fmt.Errorf("crypto: generating X25519 seed: %w", err)
	}
	seedBuffer, err := secret.NewFromBytes(seed)
	if err != nil {
		return EncryptPublicKey{}, nil, fmt.Errorf("crypto: protecting encryption seed: %w", err)
	}
	public, err := EncryptKeypairFromSeed(seedBuffer)
	if err != nil {
		seedBuffer.Close()
		return EncryptPublicKey{}, nil, err
	}
	return public, seedBuffer, nil
}

// EncryptKeypairFromSeed deterministically derives an X25519 keypair
// from a 32-byte seed, such as one produced by [Stretch]. The seed is
// used directly as the scalar; curve25519.X25519 performs the RFC
// 7748 clamping internally, so every 32-byte seed is a valid scalar.
func EncryptKeypairFromSeed(seed *secret.Buffer) (EncryptPublicKey, error) {
	if seed.Len() != EncryptSeedSize {
		return EncryptPublicKey{}, fmt.Errorf("crypto: encryption seed has %d bytes, want %d", seed.Len(), EncryptSeedSize)
	}
	publicBytes, err := curve25519.X25519(seed.Bytes(), curve25519.Basepoint)
	if err != nil {
		return EncryptPublicKey{}, fmt.Errorf("crypto: deriving X25519 public key: %w", err)
	}
	var public EncryptPublicKey
	copy(public[:], publicBytes)
	return public, nil
}

// Seal encrypts plaintext from a sender to a recipient: an X25519-ECIES
// box in the NaCl crypto_box sense, sender- and recipient-authenticated
// by the ECDH shared secret between senderSeed and recipientPublic.
// Only the holder of the matching recipient secret scalar — who must
// also know the sender's public key — can recover the plaintext via
// [Unseal].
//
// Callers that want an anonymous, single-use seal (the lockbox use of
// this primitive, spec §4.B) generate a fresh ephemeral keypair per
// call and pass its seed as senderSeed, publishing the ephemeral
// public key alongside the ciphertext instead of a long-lived sender
// identity.
func Seal(plaintext []byte, recipientPublic EncryptPublicKey, senderSeed *secret.Buffer) ([]byte, error) {
	if senderSeed.Len() != EncryptSeedSize {
		return nil, fmt.Errorf("crypto: sender seed has %d bytes, want %d", senderSeed.Len(), EncryptSeedSize)
	}

	senderPublic, err := EncryptKeypairFromSeed(senderSeed)
	if err != nil {
		return nil, err
	}

	sharedSecret, err := curve25519.X25519(senderSeed.Bytes(), recipientPublic[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: computing shared secret: %w", err)
	}

	aead, err := sealAEAD(sharedSecret, senderPublic, recipientPublic)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}
	ciphertext := aead.Seal(nonce, nonce, plaintext, nil)
	return ciphertext, nil
}

// Unseal reverses [Seal]: nonceAndCiphertext is the nonce-prefixed
// output of a Seal call from senderPublic to the recipient holding
// recipientSeed. Returns the plaintext in a [secret.Buffer].
func Unseal(nonceAndCiphertext []byte, senderPublic EncryptPublicKey, recipientSeed *secret.Buffer) (*secret.Buffer, error) {
	if recipientSeed.Len() != EncryptSeedSize {
		return nil, fmt.Errorf("crypto: recipient seed has %d bytes, want %d", recipientSeed.Len(), EncryptSeedSize)
	}
	if len(nonceAndCiphertext) < chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("crypto: sealed box shorter than nonce: %w", ErrDecryptionFailed)
	}

	recipientPublic, err := EncryptKeypairFromSeed(recipientSeed)
	if err != nil {
		return nil, err
	}

	sharedSecret, err := curve25519.X25519(recipientSeed.Bytes(), senderPublic[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: computing shared secret: %w", err)
	}

	aead, err := sealAEAD(sharedSecret, senderPublic, recipientPublic)
	if err != nil {
		return nil, err
	}

	nonce := nonceAndCiphertext[:chacha20poly1305.NonceSize]
	ciphertext := nonceAndCiphertext[chacha20poly1305.NonceSize:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: unsealing: %w", ErrDecryptionFailed)
	}

	buffer, err := secret.NewFromBytes(plaintext)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("crypto: protecting unsealed plaintext: %w", err)
	}
	return buffer, nil
}

// sealAEAD derives the ChaCha20-Poly1305 AEAD for one sender/recipient
// pair from a raw X25519 shared secret, binding both public keys into
// the HKDF salt so a seal between one pair can never be confused with
// a seal between another even if a shared secret ever collided.
func sealAEAD(sharedSecret []byte, senderPublic, recipientPublic EncryptPublicKey) (cipher.AEAD, error) {
	salt := make([]byte, 0, 2*EncryptPublicKeySize)
	salt = append(salt, senderPublic[:]...)
	salt = append(salt, recipientPublic[:]...)

	reader := hkdf.New(sha256.New, sharedSecret, salt, []byte(sealInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("crypto: deriving seal key: %w", err)
	}
	defer secret.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: constructing seal AEAD: %w", err)
	}
	return aead, nil
}
