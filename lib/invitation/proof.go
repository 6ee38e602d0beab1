// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invitation

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
)

// RedactedPrincipal is the invitee's claimed public identity: the
// "redactedPrincipal" spec §4.F step 3 carries alongside a proof of
// invitation.
type RedactedPrincipal struct {
	UserName string                  `cbor:"user_name,omitempty"`
	DeviceID string                  `cbor:"device_id,omitempty"`
	Signing  crypto.SigningPublicKey `cbor:"signing"`
	Encrypt  crypto.EncryptPublicKey `cbor:"encrypt"`
}

// ProofOfInvitation is what an invitee presents to be admitted: proof
// that they know the invitation's secret key, bound to their own
// claimed public identity.
type ProofOfInvitation struct {
	ID        string            `cbor:"id"`
	Type      Kind              `cbor:"type"`
	Payload   RedactedPrincipal `cbor:"payload"`
	Signature crypto.Signature  `cbor:"signature"`
}

// signableProof returns the canonical encoding a proof signs over —
// its id, type, and claimed identity, with Signature excluded.
func signableProof(id string, kind Kind, payload RedactedPrincipal) ([]byte, error) {
	data, err := codec.Marshal(struct {
		ID      string            `cbor:"id"`
		Type    Kind              `cbor:"type"`
		Payload RedactedPrincipal `cbor:"payload"`
	}{ID: id, Type: kind, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("invitation: encoding proof for signing: %w", err)
	}
	return data, nil
}

// Accept re-derives the invitation's single-use signing keypair from
// secretKey and signs principal, producing the proof an invitee hands
// to an admitting member.
func Accept(secretKey string, kind Kind, principal RedactedPrincipal) (*ProofOfInvitation, error) {
	normalized := normalizeSecretKey(secretKey)
	derivedPublic, derivedSeed, err := deriveSigningKeypair(normalized)
	if err != nil {
		return nil, fmt.Errorf("invitation: deriving keypair: %w", err)
	}
	defer derivedSeed.Close()

	id := invitationID(derivedPublic)
	data, err := signableProof(id, kind, principal)
	if err != nil {
		return nil, err
	}
	signature, err := crypto.Sign(derivedSeed, data)
	if err != nil {
		return nil, fmt.Errorf("invitation: signing proof: %w", err)
	}

	return &ProofOfInvitation{ID: id, Type: kind, Payload: principal, Signature: signature}, nil
}

// VerifyProof reports whether proof's signature verifies against
// publicSigningKey — the invitation's posted signing key, already
// known to anyone replaying team state without decrypting anything.
// This is the check an ADMIT_INVITED_MEMBER/ADMIT_INVITED_DEVICE
// action's identity claim rests on; granted roles still require
// decrypting the posted invitation with the team key, a separate
// concern handled by [Roles].
func VerifyProof(proof *ProofOfInvitation, publicSigningKey crypto.SigningPublicKey) bool {
	data, err := signableProof(proof.ID, proof.Type, proof.Payload)
	if err != nil {
		return false
	}
	return crypto.Verify(publicSigningKey, data, proof.Signature)
}
