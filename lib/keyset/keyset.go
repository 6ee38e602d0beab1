// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyset

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/secret"
)

// Scope identifies what kind of principal a keyset belongs to.
type Scope int

const (
	ScopeTeam Scope = iota
	ScopeRole
	ScopeMember
	ScopeDevice
	ScopeServer
	ScopeEphemeral
)

// String returns the lowercase wire name of s.
func (s Scope) String() string {
	switch s {
	case ScopeTeam:
		return "team"
	case ScopeRole:
		return "role"
	case ScopeMember:
		return "member"
	case ScopeDevice:
		return "device"
	case ScopeServer:
		return "server"
	case ScopeEphemeral:
		return "ephemeral"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scope) UnmarshalText(text []byte) error {
	switch string(text) {
	case "team":
		*s = ScopeTeam
	case "role":
		*s = ScopeRole
	case "member":
		*s = ScopeMember
	case "device":
		*s = ScopeDevice
	case "server":
		*s = ScopeServer
	case "ephemeral":
		*s = ScopeEphemeral
	default:
		return fmt.Errorf("keyset: unknown scope %q", text)
	}
	return nil
}

// ID identifies a keyset by (scope, name, generation) — equality for
// keysets is by this triple, never by key bytes.
type ID struct {
	Scope      Scope  `cbor:"scope"`
	Name       string `cbor:"name"`
	Generation uint32 `cbor:"generation"`
}

// String renders id as "scope/name@generation", used in log lines and
// error messages.
func (id ID) String() string {
	return fmt.Sprintf("%s/%s@%d", id.Scope, id.Name, id.Generation)
}

// Keyset bundles a signing keypair and an encryption keypair under
// one (scope, name, generation) identity. SigningSecret and
// EncryptSecret are nil on a redacted (public-only) keyset — the form
// that is ever posted to the signature graph, per spec §3's
// invariant that secrets never appear on the graph in plaintext.
type Keyset struct {
	ID ID

	SigningPublic crypto.SigningPublicKey
	SigningSecret *secret.Buffer // nil on a redacted keyset

	EncryptPublic crypto.EncryptPublicKey
	EncryptSecret *secret.Buffer // nil on a redacted keyset
}

// IsRedacted reports whether ks carries no secret material.
func (ks *Keyset) IsRedacted() bool {
	return ks.SigningSecret == nil && ks.EncryptSecret == nil
}

// Close releases the secret material held by ks, if any. Idempotent.
func (ks *Keyset) Close() error {
	var firstErr error
	if ks.SigningSecret != nil {
		if err := ks.SigningSecret.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		ks.SigningSecret = nil
	}
	if ks.EncryptSecret != nil {
		if err := ks.EncryptSecret.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		ks.EncryptSecret = nil
	}
	return firstErr
}

// domainKeysetSalt derives a deterministic Argon2 salt from (scope,
// name) so that deriving two different keysets from the same literal
// seed string never produces the same key material.
var domainKeysetSalt = codec.NewDomain("concord.keyset.salt")

// domainKeysetSign and domainKeysetEncrypt split one stretched seed
// into two independent subseeds — spec §4.B's "hashing under two
// domain tags" — so the signing and encryption keypairs of one
// keyset are cryptographically unrelated even though they trace back
// to the same human-chosen seed.
var (
	domainKeysetSign    = codec.NewDomain("concord.keyset.sign")
	domainKeysetEncrypt = codec.NewDomain("concord.keyset.encrypt")
)

// Create derives a new keyset for (scope, name, generation).
//
// If seed is nil, both keypairs are generated fresh from the system
// CSPRNG — the path used for every rotation, where the whole point is
// that the new keyset shares no relationship with the old one. If
// seed is non-nil (the founding `createKeyset(scope, name, seed)`
// case, e.g. a team's human-chosen passphrase), it is stretched with
// Argon2id under a salt derived from (scope, name) and split into two
// domain-separated subseeds, one per keypair — so the same seed
// string reused for a different (scope, name) never yields related
// keys, and the derivation is fully deterministic: the same seed
// always reconstructs the same keyset.
func Create(scope Scope, name string, generation uint32, seed []byte) (*Keyset, error) {
	id := ID{Scope: scope, Name: name, Generation: generation}

	if seed == nil {
		signPublic, signSeed, err := crypto.GenerateSigningKeypair()
		if err != nil {
			return nil, fmt.Errorf("keyset: generating signing keypair for %s: %w", id, err)
		}
		encryptPublic, encryptSeed, err := crypto.GenerateEncryptKeypair()
		if err != nil {
			signSeed.Close()
			return nil, fmt.Errorf("keyset: generating encryption keypair for %s: %w", id, err)
		}
		return &Keyset{
			ID:            id,
			SigningPublic: signPublic,
			SigningSecret: signSeed,
			EncryptPublic: encryptPublic,
			EncryptSecret: encryptSeed,
		}, nil
	}

	salt := codec.HashUnder(domainKeysetSalt, []byte(scope.String()+"/"+name))
	stretched, err := crypto.Stretch(seed, salt[:], crypto.DefaultStretchParams())
	if err != nil {
		return nil, fmt.Errorf("keyset: stretching seed for %s: %w", id, err)
	}
	defer stretched.Close()

	signSeedBytes := codec.HashUnder(domainKeysetSign, stretched.Bytes())
	signSeed, err := secret.NewFromBytes(append([]byte(nil), signSeedBytes[:]...))
	if err != nil {
		return nil, fmt.Errorf("keyset: protecting signing seed for %s: %w", id, err)
	}
	signPublic, err := crypto.SigningKeypairFromSeed(signSeed)
	if err != nil {
		signSeed.Close()
		return nil, fmt.Errorf("keyset: deriving signing keypair for %s: %w", id, err)
	}

	encryptSeedBytes := codec.HashUnder(domainKeysetEncrypt, stretched.Bytes())
	encryptSeed, err := secret.NewFromBytes(append([]byte(nil), encryptSeedBytes[:]...))
	if err != nil {
		signSeed.Close()
		return nil, fmt.Errorf("keyset: protecting encryption seed for %s: %w", id, err)
	}
	encryptPublic, err := crypto.EncryptKeypairFromSeed(encryptSeed)
	if err != nil {
		signSeed.Close()
		encryptSeed.Close()
		return nil, fmt.Errorf("keyset: deriving encryption keypair for %s: %w", id, err)
	}

	return &Keyset{
		ID:            id,
		SigningPublic: signPublic,
		SigningSecret: signSeed,
		EncryptPublic: encryptPublic,
		EncryptSecret: encryptSeed,
	}, nil
}

// Redact returns a copy of ks with all secret material stripped — the
// only form of a keyset ever posted to the signature graph.
func Redact(ks *Keyset) *Keyset {
	return &Keyset{
		ID:            ks.ID,
		SigningPublic: ks.SigningPublic,
		EncryptPublic: ks.EncryptPublic,
	}
}
