// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyset

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

// Keyring is every keyset, with secrets, a principal can transitively
// recover from their own root keyset via the posted lockboxes — spec
// §4.B's "(scope, name, generation) → keyset (with secrets)" mapping.
type Keyring struct {
	keysets  map[ID]*Keyset
	byHolder map[crypto.EncryptPublicKey]*Keyset
}

// Get returns the keyset at exactly id, if the keyring holds it.
func (kr *Keyring) Get(id ID) (*Keyset, bool) {
	ks, ok := kr.keysets[id]
	return ks, ok
}

// Lookup returns the highest-generation keyset the keyring holds for
// (scope, name). Returns a [teamerr.Error] of kind [teamerr.NotFound]
// if no generation of (scope, name) is reachable.
func (kr *Keyring) Lookup(scope Scope, name string) (*Keyset, error) {
	var latest *Keyset
	for id, ks := range kr.keysets {
		if id.Scope != scope || id.Name != name {
			continue
		}
		if latest == nil || id.Generation > latest.ID.Generation {
			latest = ks
		}
	}
	if latest == nil {
		return nil, teamerr.New(teamerr.NotFound, "keyset %s/%s not reachable from this keyring", scope, name)
	}
	return latest, nil
}

// All returns every keyset the keyring holds, keyed by ID. The
// returned map aliases the keyring's internal storage — callers must
// not mutate it.
func (kr *Keyring) All() map[ID]*Keyset {
	return kr.keysets
}

// Close releases every keyset's secret material. Idempotent.
func (kr *Keyring) Close() error {
	var firstErr error
	for _, ks := range kr.keysets {
		if err := ks.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Compute builds the keyring reachable from root by iterating the
// supplied lockboxes to a fixpoint: starting from root, for every
// lockbox whose recipient encryption key matches a keyset already in
// the keyring, open it and add its contents; repeat until a full pass
// over lockboxes adds nothing new. root is consumed into the
// returned keyring — do not call root.Close() separately; closing
// the keyring releases it along with everything it unlocked.
func Compute(root *Keyset, lockboxes []*Lockbox) (*Keyring, error) {
	if root.SigningSecret == nil || root.EncryptSecret == nil {
		return nil, fmt.Errorf("keyset: cannot compute a keyring from a redacted root keyset %s", root.ID)
	}

	keyring := &Keyring{
		keysets:  map[ID]*Keyset{root.ID: root},
		byHolder: map[crypto.EncryptPublicKey]*Keyset{root.EncryptPublic: root},
	}

	for {
		addedAny := false
		for _, lockbox := range lockboxes {
			if _, alreadyHave := keyring.keysets[lockbox.Contents.ID]; alreadyHave {
				continue
			}
			holder := keyring.findHolder(lockbox.Recipient.EncryptPublic)
			if holder == nil {
				continue
			}
			opened, err := OpenLockbox(lockbox, holder.EncryptSecret)
			if err != nil {
				return nil, fmt.Errorf("keyset: opening reachable lockbox for %s: %w", lockbox.Contents.ID, err)
			}
			keyring.keysets[opened.ID] = opened
			keyring.byHolder[opened.EncryptPublic] = opened
			addedAny = true
		}
		if !addedAny {
			break
		}
	}

	return keyring, nil
}

// findHolder returns the keyset in the keyring whose encryption
// public key is encryptPublic, if any.
func (kr *Keyring) findHolder(encryptPublic crypto.EncryptPublicKey) *Keyset {
	return kr.byHolder[encryptPublic]
}
