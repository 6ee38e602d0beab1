// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invitation

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/secret"
)

// Kind discriminates a member invitation from a device invitation.
type Kind int

const (
	Member Kind = iota
	Device
)

// String returns the lowercase wire name of k.
func (k Kind) String() string {
	switch k {
	case Member:
		return "member"
	case Device:
		return "device"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "member":
		*k = Member
	case "device":
		*k = Device
	default:
		return fmt.Errorf("invitation: unknown kind %q", text)
	}
	return nil
}

// Payload is the plaintext an [Invitation] seals. It names who is
// being invited and under what terms, but never the invitee's public
// keys — those are only known once the invitee accepts.
type Payload struct {
	Type             Kind                    `cbor:"type"`
	UserName         string                  `cbor:"user_name,omitempty"`
	DeviceID         string                  `cbor:"device_id,omitempty"`
	PublicSigningKey crypto.SigningPublicKey `cbor:"public_signing_key"`
	Roles            []string                `cbor:"roles,omitempty"`
	Expiration       int64                   `cbor:"expiration,omitempty"`
	MaxUses          uint32                  `cbor:"max_uses,omitempty"`
}

// Invitation is the sealed, postable form of an invitation — spec
// §4.E's `{ id, encryptedPayload, publicSigningKey, maxUses, expiration }`.
type Invitation struct {
	ID               string                  `cbor:"id"`
	EncryptedPayload []byte                  `cbor:"encrypted_payload"`
	PublicSigningKey crypto.SigningPublicKey `cbor:"public_signing_key"`
	MaxUses          uint32                  `cbor:"max_uses"`
	Expiration       int64                   `cbor:"expiration,omitempty"`
}

// CreateParams carries the fields spec §4.E's `create` takes.
type CreateParams struct {
	// UserName is set for a member invitation, DeviceID for a device
	// invitation — exactly one is non-empty.
	UserName string
	DeviceID string

	SecretKey  string
	MaxUses    uint32
	Expiration int64
	Roles      []string
}

// Create normalizes secretKey, derives a single-use signing keypair
// from it, seals the resulting [Payload] with teamKey, and returns the
// postable [Invitation]. The derived secret keypair is never
// returned — [Accept] re-derives it independently from the same
// secretKey.
func Create(teamKey *secret.Buffer, params CreateParams) (*Invitation, error) {
	kind := Member
	if params.DeviceID != "" {
		kind = Device
	}

	normalized := normalizeSecretKey(params.SecretKey)
	derivedPublic, derivedSeed, err := deriveSigningKeypair(normalized)
	if err != nil {
		return nil, fmt.Errorf("invitation: deriving keypair: %w", err)
	}
	defer derivedSeed.Close()

	payload := Payload{
		Type:             kind,
		UserName:         params.UserName,
		DeviceID:         params.DeviceID,
		PublicSigningKey: derivedPublic,
		Roles:            params.Roles,
		Expiration:       params.Expiration,
		MaxUses:          params.MaxUses,
	}
	encoded, err := codec.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("invitation: encoding payload: %w", err)
	}

	ciphertext, err := crypto.AEADEncrypt(teamKey, encoded, nil)
	if err != nil {
		return nil, fmt.Errorf("invitation: sealing payload: %w", err)
	}

	return &Invitation{
		ID:               invitationID(derivedPublic),
		EncryptedPayload: ciphertext,
		PublicSigningKey: derivedPublic,
		MaxUses:          params.MaxUses,
		Expiration:       params.Expiration,
	}, nil
}

// invitationID derives an invitation's id from its derived public
// signing key, per spec §4.E.
func invitationID(public crypto.SigningPublicKey) string {
	hash := codec.HashUnder(codec.DomainInvitationID, public[:])
	return hash.String()
}

// normalizeSecretKey lowercases secretKey and strips every non-
// alphanumeric character, so "abcd-efgh-ijkl-mnop" and
// "ABCD EFGH IJKL MNOP" derive the same keypair.
func normalizeSecretKey(secretKey string) string {
	var builder strings.Builder
	for _, r := range strings.ToLower(secretKey) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// domainInvitationSalt derives a deterministic stretch salt so the
// same normalized secret never collides with an unrelated stretch
// elsewhere in the system.
var domainInvitationSalt = codec.NewDomain("concord.invitation.salt")

// deriveSigningKeypair stretches a normalized secret key and derives
// the single-use Ed25519 keypair spec §4.E calls for.
func deriveSigningKeypair(normalizedSecretKey string) (crypto.SigningPublicKey, *secret.Buffer, error) {
	salt := codec.HashUnder(domainInvitationSalt, []byte(normalizedSecretKey))
	stretched, err := crypto.Stretch([]byte(normalizedSecretKey), salt[:], crypto.DefaultStretchParams())
	if err != nil {
		return crypto.SigningPublicKey{}, nil, fmt.Errorf("invitation: stretching secret key: %w", err)
	}
	defer stretched.Close()

	seed, err := secret.NewFromBytes(append([]byte(nil), stretched.Bytes()[:crypto.SigningSeedSize]...))
	if err != nil {
		return crypto.SigningPublicKey{}, nil, fmt.Errorf("invitation: protecting derived seed: %w", err)
	}
	public, err := crypto.SigningKeypairFromSeed(seed)
	if err != nil {
		seed.Close()
		return crypto.SigningPublicKey{}, nil, fmt.Errorf("invitation: deriving keypair: %w", err)
	}
	return public, seed, nil
}
