// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/teamerr"
)

// Validator checks whether action is permitted given state — the
// "policy" half of an action's contract (spec §4.D). It never
// mutates state.
type Validator func(state *TeamState, link *graph.Link, action *Action) error

// Reducer applies action to state and returns the resulting state —
// the "effect" half of an action's contract. Called only after its
// paired Validator has returned nil. Must not mutate state in place;
// [TeamState.clone] exists for this.
type Reducer func(state *TeamState, link *graph.Link, action *Action) (*TeamState, error)

type registryEntry struct {
	Validate Validator
	Reduce   Reducer
}

var registry = map[ActionKind]registryEntry{
	ActionRoot:               {Validate: validateRoot, Reduce: reduceRoot},
	ActionAddMember:          {Validate: validateAddMember, Reduce: reduceAddMember},
	ActionRemoveMember:       {Validate: validateRemoveMember, Reduce: reduceRemoveMember},
	ActionAddRole:            {Validate: validateAddRole, Reduce: reduceAddRole},
	ActionRemoveRole:         {Validate: validateRemoveRole, Reduce: reduceRemoveRole},
	ActionAddMemberRole:      {Validate: validateAddMemberRole, Reduce: reduceAddMemberRole},
	ActionRemoveMemberRole:   {Validate: validateRemoveMemberRole, Reduce: reduceRemoveMemberRole},
	ActionAddDevice:          {Validate: validateAddDevice, Reduce: reduceAddDevice},
	ActionRemoveDevice:       {Validate: validateRemoveDevice, Reduce: reduceRemoveDevice},
	ActionPostInvitation:     {Validate: validatePostInvitation, Reduce: reducePostInvitation},
	ActionRevokeInvitation:   {Validate: validateRevokeInvitation, Reduce: reduceRevokeInvitation},
	ActionAdmitInvitedMember: {Validate: validateAdmitInvitedMember, Reduce: reduceAdmitInvitedMember},
	ActionAdmitInvitedDevice: {Validate: validateAdmitInvitedDevice, Reduce: reduceAdmitInvitedDevice},
	ActionChangeKeys:         {Validate: validateChangeKeys, Reduce: reduceChangeKeys},
}

// Reduce folds sequence — ordinarily the output of
// (*graph.Graph).GetSequence under [MembershipResolver] — into a [TeamState],
// per spec §4.D. On a validator rejection, Reduce returns the state
// as of the link immediately before the rejected one, together with
// the rejecting error: the fold halts but does not forget what came
// before. On a signature failure, Reduce returns the same, wrapped in
// a [teamerr.Error] of kind [teamerr.GraphCorrupt] — spec §4.D calls
// this failure mode fatal to the whole fold.
func Reduce(sequence []*graph.Link) (*TeamState, error) {
	state := New()
	for _, link := range sequence {
		action, err := DecodeAction(link.Payload)
		if err != nil {
			return state, teamerr.New(teamerr.GraphCorrupt, "decoding link payload: %v", err)
		}

		authorPublic, err := authorSigningKey(state, link, action)
		if err != nil {
			return state, err
		}
		valid, err := link.Verify(authorPublic)
		if err != nil {
			return state, teamerr.New(teamerr.GraphCorrupt, "verifying link signature: %v", err)
		}
		if !valid {
			return state, teamerr.New(teamerr.GraphCorrupt, "link authored by %s/%s does not verify against its claimed key", link.UserName, link.DeviceID)
		}

		entry, ok := registry[action.Kind]
		if !ok {
			return state, fmt.Errorf("team: no registered handler for action %s", action.Kind)
		}
		if err := entry.Validate(state, link, action); err != nil {
			return state, err
		}
		next, err := entry.Reduce(state, link, action)
		if err != nil {
			return state, err
		}
		state = next
	}
	return state, nil
}

// authorSigningKey resolves the signing public key a link's
// signature must verify against: the founding member's key embedded
// in a root link's ContextPublic, or the claimed author's current
// device key otherwise.
func authorSigningKey(state *TeamState, link *graph.Link, action *Action) (crypto.SigningPublicKey, error) {
	if link.Kind == graph.Root {
		if len(link.ContextPublic) < crypto.SigningPublicKeySize {
			return crypto.SigningPublicKey{}, teamerr.New(teamerr.GraphCorrupt, "root link context too short for a signing key")
		}
		var public crypto.SigningPublicKey
		copy(public[:], link.ContextPublic[:crypto.SigningPublicKeySize])
		return public, nil
	}

	member, ok := state.Members[link.UserName]
	if !ok {
		return crypto.SigningPublicKey{}, teamerr.New(teamerr.NotFound, "link author %q is not a known member", link.UserName)
	}
	device, ok := member.Devices[link.DeviceID]
	if !ok {
		return crypto.SigningPublicKey{}, teamerr.New(teamerr.NotFound, "link author %q has no device %q", link.UserName, link.DeviceID)
	}
	return device.Keys.Signing, nil
}

// KeyResolver adapts the team reducer's author resolution to
// [graph.KeyResolver], so a caller that wants to run
// (*graph.Graph).Validate against the state as of a fully-reduced
// graph can do so without reimplementing the lookup.
func KeyResolver(state *TeamState) graph.KeyResolver {
	return func(link *graph.Link) (crypto.SigningPublicKey, error) {
		member, ok := state.Members[link.UserName]
		if !ok {
			return crypto.SigningPublicKey{}, teamerr.New(teamerr.NotFound, "link author %q is not a known member", link.UserName)
		}
		device, ok := member.Devices[link.DeviceID]
		if !ok {
			return crypto.SigningPublicKey{}, teamerr.New(teamerr.NotFound, "link author %q has no device %q", link.UserName, link.DeviceID)
		}
		return device.Keys.Signing, nil
	}
}
