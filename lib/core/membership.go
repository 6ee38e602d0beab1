// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/team"
)

// Members returns every current member, in no particular order, per
// spec §6's `members()`.
func (t *Team) Members() []*team.Member {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.MembersList()
}

// Member returns the named member, per spec §6's `members(name)`.
func (t *Team) Member(userName string) (*team.Member, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.MemberByName(userName)
}

// Roles returns every role currently defined.
func (t *Team) Roles() []*team.Role {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.RolesList()
}

// Has reports whether userName is a current member.
func (t *Team) Has(userName string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Has(userName)
}

// MemberIsAdmin reports whether userName is a current member holding
// the admin role.
func (t *Team) MemberIsAdmin(userName string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.IsAdmin(userName)
}

// sealTeamAndRoles builds the lockboxes ADD_MEMBER and
// ADMIT_INVITED_MEMBER both require: the team key plus every named
// role's key, sealed to recipientEncryptPublic.
func (t *Team) sealTeamAndRoles(roles []string, recipientEncryptPublic crypto.EncryptPublicKey) ([]*keyset.Lockbox, error) {
	lockboxes := make([]*keyset.Lockbox, 0, 1+len(roles))
	teamKey, err := t.keyring.Lookup(keyset.ScopeTeam, t.state.TeamName)
	if err != nil {
		return nil, fmt.Errorf("core: looking up team key: %w", err)
	}
	lockbox, err := keyset.CreateLockbox(teamKey, keyset.Reference{ID: teamKey.ID, EncryptPublic: recipientEncryptPublic})
	if err != nil {
		return nil, fmt.Errorf("core: sealing team key: %w", err)
	}
	lockboxes = append(lockboxes, lockbox)

	for _, role := range roles {
		roleKey, err := t.keyring.Lookup(keyset.ScopeRole, role)
		if err != nil {
			return nil, fmt.Errorf("core: looking up role %q key: %w", role, err)
		}
		lockbox, err := keyset.CreateLockbox(roleKey, keyset.Reference{ID: roleKey.ID, EncryptPublic: recipientEncryptPublic})
		if err != nil {
			return nil, fmt.Errorf("core: sealing role %q key: %w", role, err)
		}
		lockboxes = append(lockboxes, lockbox)
	}
	return lockboxes, nil
}

// Add admits user directly (no invitation) with the given roles, per
// spec §6's `add(user, roles?)`. user carries the new member's own
// keys, user name, and enrolled devices, already known to the caller
// out of band — this is the path a host uses to enroll a member whose
// identity it already trusts without going through an invitation.
func (t *Team) Add(user *team.Member, roles []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	member := &team.Member{
		UserName: user.UserName,
		Keys:     user.Keys,
		Devices:  user.Devices,
		Roles:    make(map[string]bool, len(roles)),
	}
	for _, role := range roles {
		member.Roles[role] = true
	}

	lockboxes, err := t.sealTeamAndRoles(roles, member.Keys.Encrypt)
	if err != nil {
		return err
	}

	return t.append(&team.Action{
		Kind:      team.ActionAddMember,
		Member:    member,
		Lockboxes: lockboxes,
	})
}

// rotationLockboxes builds a CHANGE_KEYS-shaped lockbox set: a fresh
// keyset at the next generation for (scope, name), resealed to every
// current holder of the prior generation except excluded. Used by
// Remove (rotating every scope the removed member could see) and
// ChangeKeys (rotating a single scope on request).
func (t *Team) rotationLockboxes(scope keyset.Scope, name string, excludeEncryptPublic *crypto.EncryptPublicKey) (*keyset.Keyset, []*keyset.Lockbox, error) {
	var generation uint32
	var holders []crypto.EncryptPublicKey
	for _, lockbox := range t.state.Lockboxes {
		id := lockbox.Contents.ID
		if id.Scope != scope || id.Name != name {
			continue
		}
		if id.Generation > generation {
			generation = id.Generation
			holders = nil
		}
		if id.Generation == generation {
			holders = append(holders, lockbox.Recipient.EncryptPublic)
		}
	}

	fresh, err := keyset.Create(scope, name, generation+1, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("core: rotating %s/%s: %w", scope, name, err)
	}

	lockboxes := make([]*keyset.Lockbox, 0, len(holders))
	seen := make(map[crypto.EncryptPublicKey]bool, len(holders))
	for _, holder := range holders {
		if seen[holder] {
			continue
		}
		seen[holder] = true
		if excludeEncryptPublic != nil && holder == *excludeEncryptPublic {
			continue
		}
		lockbox, err := keyset.CreateLockbox(fresh, keyset.Reference{ID: fresh.ID, EncryptPublic: holder})
		if err != nil {
			fresh.Close()
			return nil, nil, fmt.Errorf("core: resealing %s/%s to a holder: %w", scope, name, err)
		}
		lockboxes = append(lockboxes, lockbox)
	}
	return fresh, lockboxes, nil
}

// Remove expels userName, rotating every scope reachable from their
// member identity (team key, every role they held, their own member
// and device keys) to every other current holder — spec §4.D invariant
// I7 and §8 scenario 3. Per invariant I5, an admin cannot remove
// themselves this way.
func (t *Team) Remove(userName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	member, ok := t.state.MemberByName(userName)
	if !ok {
		return fmt.Errorf("core: %s is not a member", userName)
	}
	removedEncrypt := member.Keys.Encrypt

	toRotate := team.ScopesToRotate(t.state, keyset.ID{Scope: keyset.ScopeMember, Name: userName})
	var lockboxes []*keyset.Lockbox
	var fresh []*keyset.Keyset
	for id := range toRotate {
		if id.Scope == keyset.ScopeMember && id.Name == userName {
			continue // the removed member's own scope retires, it is not rotated forward
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
		Kind:      team.ActionRemoveMember,
		UserName:  userName,
		Lockboxes: lockboxes,
	})
}

// AddRole defines a new role, initially held by no one.
func (t *Team) AddRole(roleName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.append(&team.Action{Kind: team.ActionAddRole, Role: &team.Role{RoleName: roleName}})
}

// RemoveRole removes roleName. The admin role cannot be removed, and
// a role must hold no members at the time of removal.
func (t *Team) RemoveRole(roleName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.append(&team.Action{Kind: team.ActionRemoveRole, RoleName: roleName})
}

// AddMemberRole grants roleName to userName, sealing the role's
// current key to them.
func (t *Team) AddMemberRole(userName, roleName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	member, ok := t.state.MemberByName(userName)
	if !ok {
		return fmt.Errorf("core: %s is not a member", userName)
	}
	roleKey, err := t.keyring.Lookup(keyset.ScopeRole, roleName)
	if err != nil {
		return fmt.Errorf("core: looking up role %q key: %w", roleName, err)
	}
	lockbox, err := keyset.CreateLockbox(roleKey, keyset.Reference{ID: roleKey.ID, EncryptPublic: member.Keys.Encrypt})
	if err != nil {
		return fmt.Errorf("core: sealing role %q key to %s: %w", roleName, userName, err)
	}

	return t.append(&team.Action{
		Kind:      team.ActionAddMemberRole,
		UserName:  userName,
		RoleName:  roleName,
		Lockboxes: []*keyset.Lockbox{lockbox},
	})
}

// RemoveMemberRole revokes roleName from userName. Removing a
// member's last admin role is refused (invariant I2).
func (t *Team) RemoveMemberRole(userName, roleName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.append(&team.Action{Kind: team.ActionRemoveMemberRole, UserName: userName, RoleName: roleName})
}
