// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/keyset"
)

// hasLockboxFor reports whether lockboxes contains an entry sealing
// scope to recipientEncryptPublic, regardless of generation or name —
// used to check that an action's lockboxes actually distribute the
// keys it claims to.
func hasLockboxFor(lockboxes []*keyset.Lockbox, scope keyset.Scope, recipientEncryptPublic crypto.EncryptPublicKey) bool {
	for _, lockbox := range lockboxes {
		if lockbox.Contents.ID.Scope == scope && lockbox.Recipient.EncryptPublic == recipientEncryptPublic {
			return true
		}
	}
	return false
}

// hasLockboxForName reports whether lockboxes contains an entry
// sealing (scope, name) to recipientEncryptPublic.
func hasLockboxForName(lockboxes []*keyset.Lockbox, scope keyset.Scope, name string, recipientEncryptPublic crypto.EncryptPublicKey) bool {
	for _, lockbox := range lockboxes {
		if lockbox.Contents.ID.Scope == scope && lockbox.Contents.ID.Name == name && lockbox.Recipient.EncryptPublic == recipientEncryptPublic {
			return true
		}
	}
	return false
}

// hasTeamAndAdminLockboxes reports whether lockboxes seals both the
// team scope and the admin role scope to recipientEncryptPublic —
// what a ROOT action must provide its founding member (spec §4.D).
func hasTeamAndAdminLockboxes(lockboxes []*keyset.Lockbox, recipientEncryptPublic crypto.EncryptPublicKey) bool {
	return hasLockboxFor(lockboxes, keyset.ScopeTeam, recipientEncryptPublic) &&
		hasLockboxForName(lockboxes, keyset.ScopeRole, AdminRole, recipientEncryptPublic)
}

// hasTeamAndRoleLockboxes reports whether lockboxes seals the team
// scope and every named role in roles to recipientEncryptPublic —
// what ADD_MEMBER and ADMIT_INVITED_MEMBER must provide a new member.
func hasTeamAndRoleLockboxes(lockboxes []*keyset.Lockbox, roles []string, recipientEncryptPublic crypto.EncryptPublicKey) bool {
	if !hasLockboxFor(lockboxes, keyset.ScopeTeam, recipientEncryptPublic) {
		return false
	}
	for _, role := range roles {
		if !hasLockboxForName(lockboxes, keyset.ScopeRole, role, recipientEncryptPublic) {
			return false
		}
	}
	return true
}
