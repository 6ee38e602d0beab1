// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/team"
)

// TeamKeys returns the team scope's current keyset id — spec §8
// scenario 1 checks `bob.teamKeys().generation == 0` and scenario 3
// checks it advances to 1 after a removal forces a rotation.
func (t *Team) TeamKeys() (keyset.ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ks, err := t.teamAEADKey()
	if err != nil {
		return keyset.ID{}, err
	}
	return ks.ID, nil
}

// AdminKeys returns the admin role's current keyset id, checked by
// spec §8 scenario 3 alongside TeamKeys.
func (t *Team) AdminKeys() (keyset.ID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ks, err := t.keyring.Lookup(keyset.ScopeRole, team.AdminRole)
	if err != nil {
		return keyset.ID{}, err
	}
	return ks.ID, nil
}

// ChangeKeys rotates scope/name to a fresh generation and reseals it
// to every current holder of the prior generation, per spec §6's
// `changeKeys(newKeys)` and §4.D's CHANGE_KEYS action. The caller must
// already hold the scope being rotated (team scope requires admin,
// role scope requires holding that role, member/device scope requires
// rotating one's own).
func (t *Team) ChangeKeys(scope keyset.Scope, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	fresh, lockboxes, err := t.rotationLockboxes(scope, name, nil)
	if err != nil {
		return err
	}
	defer fresh.Close()

	return t.append(&team.Action{
		Kind:             team.ActionChangeKeys,
		Scope:            scope,
		ScopeName:        name,
		NewSigningPublic: fresh.SigningPublic,
		NewEncryptPublic: fresh.EncryptPublic,
		Lockboxes:        lockboxes,
	})
}

// Envelope is what [Team.Encrypt] produces and [Team.Decrypt] consumes
// — spec §6's opaque `env`. Scope/Name/Generation identify which
// keyset's secret the payload is sealed under, so a recipient who
// holds that keyset (directly or transitively, via their own keyring)
// can always decrypt it without the sender doing per-recipient work.
type Envelope struct {
	Scope      keyset.Scope
	Name       string
	Generation uint32
	Ciphertext []byte
}

// Encrypt AEAD-encrypts payload under the team key, or under a named
// role's key if roleName is non-empty, per spec §6's `encrypt(payload,
// roleName?)`. Anyone holding that scope's key — every member for the
// team key, every member of the role for a role key — can [Team.Decrypt]
// the result.
func (t *Team) Encrypt(payload []byte, roleName string) (*Envelope, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var ks *keyset.Keyset
	var err error
	if roleName == "" {
		ks, err = t.teamAEADKey()
	} else {
		ks, err = t.keyring.Lookup(keyset.ScopeRole, roleName)
	}
	if err != nil {
		return nil, fmt.Errorf("core: looking up encryption key: %w", err)
	}

	ciphertext, err := crypto.AEADEncrypt(ks.EncryptSecret, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("core: encrypting payload: %w", err)
	}
	return &Envelope{Scope: ks.ID.Scope, Name: ks.ID.Name, Generation: ks.ID.Generation, Ciphertext: ciphertext}, nil
}

// Decrypt reverses [Team.Encrypt]: looks up env's (scope, name,
// generation) keyset in the local keyring and AEAD-decrypts env's
// ciphertext. Returns an error if the local device's keyring cannot
// reach that keyset — e.g. a role key after the role was revoked, or
// any key after a rotation past env's generation.
func (t *Team) Decrypt(env *Envelope) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ks, err := t.keyring.Lookup(env.Scope, env.Name)
	if err != nil {
		return nil, fmt.Errorf("core: looking up decryption key: %w", err)
	}
	if ks.ID.Generation != env.Generation {
		return nil, fmt.Errorf("core: held generation %d of %s/%s does not match envelope generation %d", ks.ID.Generation, env.Scope, env.Name, env.Generation)
	}

	plaintext, err := crypto.AEADDecrypt(ks.EncryptSecret, env.Ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("core: decrypting envelope: %w", err)
	}
	defer plaintext.Close()
	return append([]byte(nil), plaintext.Bytes()...), nil
}

// Sign signs payload with the local device's signing key, per spec
// §6's `sign(payload)`.
func (t *Team) Sign(payload []byte) (crypto.Signature, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return crypto.Sign(t.device.Keys.SigningSecret, payload)
}

// Verify checks sig against payload and public, per spec §6's
// `verify(env)` — named for the signed envelope it's typically applied
// to, though it takes the caller's already-unpacked fields rather than
// an opaque envelope type, since a signature verification has no
// decryption step to hide behind one.
func (t *Team) Verify(payload []byte, sig crypto.Signature, public crypto.SigningPublicKey) bool {
	return crypto.Verify(public, payload, sig)
}

// AddDevice enrolls an additional device for an existing member, per
// the ADD_DEVICE action (spec §4.D) — used when a member gains a new
// device out of band rather than through a device invitation.
func (t *Team) AddDevice(userName string, device *team.DevicePublic) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	member, ok := t.state.MemberByName(userName)
	if !ok {
		return fmt.Errorf("core: %s is not a member", userName)
	}
	roles := make([]string, 0, len(member.Roles))
	for role := range member.Roles {
		roles = append(roles, role)
	}
	lockboxes, err := t.sealTeamAndRoles(roles, device.Keys.Encrypt)
	if err != nil {
		return err
	}

	return t.append(&team.Action{
		Kind:      team.ActionAddDevice,
		UserName:  userName,
		Device:    device,
		Lockboxes: lockboxes,
	})
}

// RemoveDevice revokes one of a member's enrolled devices, rotating
// every scope it could see.
func (t *Team) RemoveDevice(userName, deviceID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	member, ok := t.state.MemberByName(userName)
	if !ok {
		return fmt.Errorf("core: %s is not a member", userName)
	}
	device, ok := member.Devices[deviceID]
	if !ok {
		return fmt.Errorf("core: device %q is not enrolled for %s", deviceID, userName)
	}
	removedEncrypt := device.Keys.Encrypt

	toRotate := team.ScopesToRotate(t.state, keyset.ID{Scope: keyset.ScopeDevice, Name: deviceID})
	var lockboxes []*keyset.Lockbox
	var fresh []*keyset.Keyset
	for id := range toRotate {
		if id.Scope == keyset.ScopeDevice && id.Name == deviceID {
			continue
		}
		newKeyset, newLockboxes, err := t.rotationLockboxes(id.Scope, id.Name, &removedEncrypt)
		if err != nil {
			for _, ks := range fresh {
				ks.Close()
			}
			return err
		}
		fresh = append(fresh, newKeyset)
		lockboxes = append(lockboxes, newLockboxes...)
	}
	defer func() {
		for _, ks := range fresh {
			ks.Close()
		}
	}()

	return t.append(&team.Action{
		Kind:      team.ActionRemoveDevice,
		UserName:  userName,
		DeviceID:  deviceID,
		Lockboxes: lockboxes,
	})
}

// Server is a named host enrolled as a non-human principal, per spec
// §6's `addServer(server)`/`removeServer(host)`. A server has no
// roles of its own and is carried as an ordinary [team.Member] whose
// UserName is its host — there is no dedicated action for it (see
// DESIGN.md); it reuses ADD_MEMBER/REMOVE_MEMBER exactly as a
// roleless human member would.
type Server struct {
	Host string
	Keys team.Keys
}

// AddServer enrolls server, sealing only the team key to it (no
// roles) — a server participates in replication and message routing
// but holds no role-scoped authority by default.
func (t *Team) AddServer(server Server) error {
	return t.Add(&team.Member{UserName: server.Host, Keys: server.Keys}, nil)
}

// RemoveServer revokes host's enrollment and rotates every scope it
// could see, identical to removing a human member.
func (t *Team) RemoveServer(host string) error {
	return t.Remove(host)
}
