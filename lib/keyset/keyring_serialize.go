// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyset

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/secret"
)

// keySide is one half (signing or encryption) of a serialized keyset,
// spec §6: `{publicKey, secretKey?}` — SecretKey omitted on a redacted
// keyset.
type keySide struct {
	PublicKey [32]byte  `cbor:"public_key"`
	SecretKey *[32]byte `cbor:"secret_key,omitempty"`
}

// wireKeyset is one keyring entry's wire form, spec §6: `{scope, name,
// generation, signature: {...}, encryption: {...}}`.
type wireKeyset struct {
	Scope      Scope   `cbor:"scope"`
	Name       string  `cbor:"name"`
	Generation uint32  `cbor:"generation"`
	Signature  keySide `cbor:"signature"`
	Encryption keySide `cbor:"encryption"`
}

// Serialize encodes kr in the wire form a host persists alongside the
// graph (spec §6's `serialize(graph) + separator + serialize(keyring)`
// storage blob).
func (kr *Keyring) Serialize() ([]byte, error) {
	wire := make([]wireKeyset, 0, len(kr.keysets))
	for _, ks := range kr.keysets {
		entry := wireKeyset{
			Scope:      ks.ID.Scope,
			Name:       ks.ID.Name,
			Generation: ks.ID.Generation,
			Signature:  keySide{PublicKey: [32]byte(ks.SigningPublic)},
			Encryption: keySide{PublicKey: [32]byte(ks.EncryptPublic)},
		}
		if ks.SigningSecret != nil {
			var seed [32]byte
			copy(seed[:], ks.SigningSecret.Bytes())
			entry.Signature.SecretKey = &seed
		}
		if ks.EncryptSecret != nil {
			var seed [32]byte
			copy(seed[:], ks.EncryptSecret.Bytes())
			entry.Encryption.SecretKey = &seed
		}
		wire = append(wire, entry)
	}

	data, err := codec.Marshal(wire)
	for i := range wire {
		if wire[i].Signature.SecretKey != nil {
			secret.Zero(wire[i].Signature.SecretKey[:])
		}
		if wire[i].Encryption.SecretKey != nil {
			secret.Zero(wire[i].Encryption.SecretKey[:])
		}
	}
	if err != nil {
		return nil, fmt.Errorf("keyset: serializing keyring: %w", err)
	}
	return data, nil
}

// DeserializeKeyring decodes a keyring previously produced by
// [Keyring.Serialize]. Entries without a secret key become redacted
// keysets — the form a peer that never held the secret persists for
// bookkeeping only.
func DeserializeKeyring(data []byte) (*Keyring, error) {
	var wire []wireKeyset
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("keyset: deserializing keyring: %w", err)
	}

	keyring := &Keyring{
		keysets:  make(map[ID]*Keyset, len(wire)),
		byHolder: make(map[crypto.EncryptPublicKey]*Keyset, len(wire)),
	}
	for _, entry := range wire {
		id := ID{Scope: entry.Scope, Name: entry.Name, Generation: entry.Generation}
		ks := &Keyset{
			ID:            id,
			SigningPublic: crypto.SigningPublicKey(entry.Signature.PublicKey),
			EncryptPublic: crypto.EncryptPublicKey(entry.Encryption.PublicKey),
		}
		if entry.Signature.SecretKey != nil {
			seed, err := secret.NewFromBytes(append([]byte(nil), entry.Signature.SecretKey[:]...))
			if err != nil {
				return nil, fmt.Errorf("keyset: protecting signing seed for %s: %w", id, err)
			}
			ks.SigningSecret = seed
		}
		if entry.Encryption.SecretKey != nil {
			seed, err := secret.NewFromBytes(append([]byte(nil), entry.Encryption.SecretKey[:]...))
			if err != nil {
				return nil, fmt.Errorf("keyset: protecting encryption seed for %s: %w", id, err)
			}
			ks.EncryptSecret = seed
		}
		keyring.keysets[id] = ks
		keyring.byHolder[ks.EncryptPublic] = ks
	}
	return keyring, nil
}
