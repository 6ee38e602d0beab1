// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invitation

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/secret"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

// Validate checks proof against posted: not revoked, not exhausted,
// not expired as of now, the claimed identity matches the sealed
// payload, and proof.Signature verifies against posted's public
// signing key. teamKey unseals posted's payload. now is the caller's
// current Unix time — threaded explicitly so Validate stays a pure
// function of its inputs.
//
// Returns nil on success, or a [teamerr.Error] naming the first
// failure spec §4.E's failure kinds distinguish: InvitationRevoked,
// InvitationUsed, InvitationExpired, NameMismatch, InvalidSignature.
func Validate(proof *ProofOfInvitation, posted *Invitation, teamKey *secret.Buffer, uses uint32, now int64) error {
	if posted.ID != proof.ID {
		return teamerr.NewInvitation(teamerr.NotFound, proof.ID, "invitation: proof id %q does not match posted invitation %q", proof.ID, posted.ID)
	}

	payload, err := decryptPayload(posted, teamKey)
	if err != nil {
		return err
	}

	if posted.MaxUses != 0 && uses >= posted.MaxUses {
		return teamerr.NewInvitation(teamerr.InvitationUsed, posted.ID, "invitation %s has reached its maximum uses (%d)", posted.ID, posted.MaxUses)
	}
	if posted.Expiration != 0 && now > posted.Expiration {
		return teamerr.NewInvitation(teamerr.InvitationExpired, posted.ID, "invitation %s expired at %d", posted.ID, posted.Expiration)
	}

	if proof.Type != payload.Type {
		return teamerr.NewInvitation(teamerr.NameMismatch, posted.ID, "invitation %s: proof type %s does not match invitation type %s", posted.ID, proof.Type, payload.Type)
	}
	switch payload.Type {
	case Member:
		if proof.Payload.UserName != payload.UserName {
			return teamerr.NewInvitation(teamerr.NameMismatch, posted.ID, "invitation %s: proof userName %q does not match invited userName %q", posted.ID, proof.Payload.UserName, payload.UserName)
		}
	case Device:
		if proof.Payload.DeviceID != payload.DeviceID {
			return teamerr.NewInvitation(teamerr.NameMismatch, posted.ID, "invitation %s: proof deviceId %q does not match invited deviceId %q", posted.ID, proof.Payload.DeviceID, payload.DeviceID)
		}
	}

	data, err := signableProof(proof.ID, proof.Type, proof.Payload)
	if err != nil {
		return err
	}
	if !crypto.Verify(posted.PublicSigningKey, data, proof.Signature) {
		return teamerr.NewInvitation(teamerr.InvalidSignature, posted.ID, "invitation %s: proof signature does not verify", posted.ID)
	}

	return nil
}

// Roles decrypts posted's payload with teamKey and returns the roles
// it grants a member invitation — empty for a device invitation.
func Roles(posted *Invitation, teamKey *secret.Buffer) ([]string, error) {
	payload, err := decryptPayload(posted, teamKey)
	if err != nil {
		return nil, err
	}
	return payload.Roles, nil
}

func decryptPayload(posted *Invitation, teamKey *secret.Buffer) (*Payload, error) {
	plaintext, err := crypto.AEADDecrypt(teamKey, posted.EncryptedPayload, nil)
	if err != nil {
		return nil, teamerr.NewInvitation(teamerr.DecryptionFailed, posted.ID, "invitation: decrypting invitation %s: %v", posted.ID, err)
	}
	defer plaintext.Close()

	var payload Payload
	if err := codec.Unmarshal(plaintext.Bytes(), &payload); err != nil {
		return nil, fmt.Errorf("invitation: decoding payload for %s: %w", posted.ID, err)
	}
	return &payload, nil
}
