// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/bureau-foundation/concord/lib/secret"
)

// AEADKeySize is the size in bytes of a symmetric key accepted by
// [AEADEncrypt] and [AEADDecrypt].
const AEADKeySize = chacha20poly1305.KeySize

// AEADEncrypt encrypts plaintext under key, authenticating
// additionalData alongside it without encrypting it. Unlike [Seal],
// the caller supplies the key directly, so a fresh random nonce is
// generated per call and prefixed to the returned ciphertext — this
// is the primitive session traffic and invitation payloads use, where
// the same key legitimately encrypts many messages.
func AEADEncrypt(key *secret.Buffer, plaintext, additionalData []byte) ([]byte, error) {
	if key.Len() != AEADKeySize {
		return nil, fmt.Errorf("crypto: AEAD key has %d bytes, want %d", key.Len(), AEADKeySize)
	}
	aead, err := chacha20poly1305.New(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("crypto: constructing AEAD: %w", err)
	}

	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, plaintext, additionalData)
	return sealed, nil
}

// AEADDecrypt reverses [AEADEncrypt]: nonceAndCiphertext is the
// nonce-prefixed output of a prior AEADEncrypt call under the same
// key and additionalData. Returns the plaintext in a [secret.Buffer].
func AEADDecrypt(key *secret.Buffer, nonceAndCiphertext, additionalData []byte) (*secret.Buffer, error) {
	if key.Len() != AEADKeySize {
		return nil, fmt.Errorf("crypto: AEAD key has %d bytes, want %d", key.Len(), AEADKeySize)
	}
	if len(nonceAndCiphertext) < chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("crypto: ciphertext shorter than nonce: %w", ErrDecryptionFailed)
	}
	aead, err := chacha20poly1305.New(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("crypto: constructing AEAD: %w", err)
	}

	nonce := nonceAndCiphertext[:chacha20poly1305.NonceSize]
	ciphertext := nonceAndCiphertext[chacha20poly1305.NonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, fmt.Errorf("crypto: opening AEAD: %w", ErrDecryptionFailed)
	}

	buffer, err := secret.NewFromBytes(plaintext)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("crypto: protecting decrypted plaintext: %w", err)
	}
	return buffer, nil
}
