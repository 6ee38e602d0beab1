// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

// currentGeneration returns the highest generation already posted for
// (scope, name), or 0 if the scope has never appeared in a lockbox.
func currentGeneration(state *TeamState, scope keyset.Scope, name string) uint32 {
	var generation uint32
	for _, lockbox := range state.Lockboxes {
		id := lockbox.Contents.ID
		if id.Scope == scope && id.Name == name && id.Generation > generation {
			generation = id.Generation
		}
	}
	return generation
}

// currentHolders returns the distinct recipients holding (scope, name)
// at its current generation, by its most recent lockbox.
func currentHolders(state *TeamState, scope keyset.Scope, name string, generation uint32) map[crypto.EncryptPublicKey]bool {
	holders := make(map[crypto.EncryptPublicKey]bool)
	for _, lockbox := range state.Lockboxes {
		id := lockbox.Contents.ID
		if id.Scope == scope && id.Name == name && id.Generation == generation {
			holders[lockbox.Recipient.EncryptPublic] = true
		}
	}
	return holders
}

// authorHoldsScope reports whether link's author is entitled to rotate
// scope/name — team scope requires admin, role scope requires holding
// that role, member and device scope require the author naming their
// own identity.
func authorHoldsScope(state *TeamState, link *graph.Link, scope keyset.Scope, name string) bool {
	switch scope {
	case keyset.ScopeTeam:
		return state.IsAdmin(link.UserName)
	case keyset.ScopeRole:
		member, ok := state.MemberByName(link.UserName)
		return ok && member.HasRole(name)
	case keyset.ScopeMember:
		return link.UserName == name
	case keyset.ScopeDevice:
		return link.DeviceID == name
	default:
		return false
	}
}

// validateChangeKeys requires the author to hold the scope being
// rotated and the action's lockboxes to reseal the new generation to
// every current holder of the prior generation. Member and device
// scope rotate the principal's own identity keys, so those scopes
// must also carry the new signing public key that reduceChangeKeys
// will install.
func validateChangeKeys(state *TeamState, link *graph.Link, action *Action) error {
	if !authorHoldsScope(state, link, action.Scope, action.ScopeName) {
		return teamerr.New(teamerr.NotAdmin, "%s does not hold %s/%s", link.UserName, action.Scope, action.ScopeName)
	}
	if action.Scope == keyset.ScopeMember || action.Scope == keyset.ScopeDevice {
		var zero crypto.SigningPublicKey
		if action.NewSigningPublic == zero {
			return teamerr.New(teamerr.ProtocolViolation, "CHANGE_KEYS for %s/%s must carry the rotated signing public key", action.Scope, action.ScopeName)
		}
	}
	generation := currentGeneration(state, action.Scope, action.ScopeName)
	nextID := keyset.ID{Scope: action.Scope, Name: action.ScopeName, Generation: generation + 1}
	holders := currentHolders(state, action.Scope, action.ScopeName, generation)
	for holder := range holders {
		if !hasLockboxForName(action.Lockboxes, nextID.Scope, nextID.Name, holder) {
			return teamerr.New(teamerr.ProtocolViolation, "CHANGE_KEYS must reseal %s to every current holder", nextID)
		}
	}
	for _, lockbox := range action.Lockboxes {
		if lockbox.Contents.ID != nextID {
			return teamerr.New(teamerr.ProtocolViolation, "CHANGE_KEYS lockbox contents must be %s, got %s", nextID, lockbox.Contents.ID)
		}
		if lockbox.Contents.EncryptPublic != action.NewEncryptPublic {
			return teamerr.New(teamerr.ProtocolViolation, "CHANGE_KEYS lockbox contents key does not match the claimed new encryption key")
		}
	}
	return nil
}

// reduceChangeKeys appends the rotated generation's lockboxes and, for
// member and device scope, updates the rotated principal's current
// identity keys in state so the next link it authors verifies under
// its new signing key rather than the one it just retired.
func reduceChangeKeys(state *TeamState, link *graph.Link, action *Action) (*TeamState, error) {
	next := state.clone()
	next.Lockboxes = append(next.Lockboxes, action.Lockboxes...)

	switch action.Scope {
	case keyset.ScopeMember:
		if member, ok := next.Members[action.ScopeName]; ok {
			member.Keys.Signing = action.NewSigningPublic
			member.Keys.Encrypt = action.NewEncryptPublic
		}
	case keyset.ScopeDevice:
		for _, member := range next.Members {
			if device, ok := member.Devices[action.ScopeName]; ok {
				device.Keys.Signing = action.NewSigningPublic
				device.Keys.Encrypt = action.NewEncryptPublic
				member.Devices[action.ScopeName] = device
			}
		}
	}

	return next, nil
}
