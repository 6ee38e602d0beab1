// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import "github.com/bureau-foundation/concord/lib/keyset"

// ScopesToRotate computes spec §4.D's rotation set for a compromised
// (or removed) scope: starting from compromised, follow every lockbox
// edge recipient→contents already present in state.Lockboxes — "S can
// open contents because S holds recipient" — to a fixpoint. The
// result includes compromised itself, per spec text ("including S
// itself").
func ScopesToRotate(state *TeamState, compromised keyset.ID) map[keyset.ID]bool {
	reached := map[keyset.ID]bool{compromised: true}
	for {
		addedAny := false
		for _, lockbox := range state.Lockboxes {
			if reached[lockbox.Recipient.ID] && !reached[lockbox.Contents.ID] {
				reached[lockbox.Contents.ID] = true
				addedAny = true
			}
		}
		if !addedAny {
			break
		}
	}
	return reached
}

// scopeNamesToRotate is [ScopesToRotate] restricted to the set of
// distinct (scope, name) pairs it touches, ignoring generation — used
// by removal validators to check an action's lockboxes address every
// scope a removed principal could see, without needing to predict the
// exact next generation number the action assigns each one.
func scopeNamesToRotate(state *TeamState, compromised keyset.ID) map[keyset.Scope]map[string]bool {
	names := make(map[keyset.Scope]map[string]bool)
	for id := range ScopesToRotate(state, compromised) {
		if names[id.Scope] == nil {
			names[id.Scope] = make(map[string]bool)
		}
		names[id.Scope][id.Name] = true
	}
	return names
}

// coversRotatedScopes reports whether lockboxes seals a new lockbox
// for every (scope, name) reachable from the member scope named
// memberName — the rotation completeness invariant I7 asks for,
// approximated at the granularity of "touched at all" rather than
// verifying every remaining holder individually received a fresh
// lockbox.
func coversRotatedScopes(state *TeamState, memberName string, lockboxes []*keyset.Lockbox) bool {
	if !state.Has(memberName) {
		return true // nothing to check against; caller already validated membership
	}
	compromised := keyset.ID{Scope: keyset.ScopeMember, Name: memberName}
	toRotate := scopeNamesToRotate(state, compromised)

	touched := make(map[keyset.Scope]map[string]bool)
	for _, lockbox := range lockboxes {
		scope, name := lockbox.Contents.ID.Scope, lockbox.Contents.ID.Name
		if touched[scope] == nil {
			touched[scope] = make(map[string]bool)
		}
		touched[scope][name] = true
	}

	for scope, names := range toRotate {
		for name := range names {
			if scope == keyset.ScopeMember && name == memberName {
				continue // the removed member's own scope is retired, not rotated to a new holder
			}
			if !touched[scope][name] {
				return false
			}
		}
	}
	return true
}
