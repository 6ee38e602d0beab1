// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crypto

import (
	"testing"

	"github.com/bureau-foundation/concord/lib/secret"
)

// newSeedBuffer copies seedBytes into a fresh secret.Buffer, since
// secret.NewFromBytes zeroes its source slice and tests often want to
// reuse the same seed bytes more than once.
func newSeedBuffer(seedBytes []byte) (*secret.Buffer, error) {
	copied := append([]byte(nil), seedBytes...)
	return secret.NewFromBytes(copied)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	public, seed, err := GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	defer seed.Close()

	message := []byte("admit device to team")
	signature, err := Sign(seed, message)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if !Verify(public, message, signature) {
		t.Fatal("Verify rejected a signature it produced")
	}

	if Verify(public, []byte("a different message"), signature) {
		t.Fatal("Verify accepted a signature over the wrong message")
	}
}

func TestSigningKeypairFromSeedDeterministic(t *testing.T) {
	seedBytes, err := Random(SigningSeedSize)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}

	firstSeed, err := newSeedBuffer(seedBytes)
	if err != nil {
		t.Fatalf("newSeedBuffer: %v", err)
	}
	defer firstSeed.Close()
	firstPublic, err := SigningKeypairFromSeed(firstSeed)
	if err != nil {
		t.Fatalf("SigningKeypairFromSeed: %v", err)
	}

	secondSeed, err := newSeedBuffer(seedBytes)
	if err != nil {
		t.Fatalf("newSeedBuffer: %v", err)
	}
	defer secondSeed.Close()
	secondPublic, err := SigningKeypairFromSeed(secondSeed)
	if err != nil {
		t.Fatalf("SigningKeypairFromSeed: %v", err)
	}

	if firstPublic != secondPublic {
		t.Fatal("same seed derived two different public keys")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	_, seed, err := GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	defer seed.Close()

	otherPublic, otherSeed, err := GenerateSigningKeypair()
	if err != nil {
		t.Fatalf("GenerateSigningKeypair: %v", err)
	}
	defer otherSeed.Close()

	message := []byte("payload")
	signature, err := Sign(seed, message)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if Verify(otherPublic, message, signature) {
		t.Fatal("Verify accepted a signature under the wrong public key")
	}
}
