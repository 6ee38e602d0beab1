// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package team

import (
	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/graph"
)

// MembershipResolver wraps [graph.TrivialResolver]'s ordering with the
// membership-aware filtering spec §4.C assigns to this component: a
// removed member's concurrent writes are dropped from the branch that
// did not remove them, and mutual concurrent removals between two
// admins are resolved in favor of whichever admin sorts higher, so
// every peer drops the same side of the conflict regardless of which
// branch they walked first. state is the team state as of the
// branches' common ancestor.
func MembershipResolver(state *TeamState) graph.Resolver {
	return func(branchA, branchB []*graph.Link) []*graph.Link {
		removedInA := removalTargets(branchA)
		removedInB := removalTargets(branchB)

		filteredA := dropWritesByRemoved(branchA, removedInB)
		filteredB := dropWritesByRemoved(branchB, removedInA)

		filteredA, filteredB = dropMutualAdminRemovals(state, filteredA, filteredB)

		return graph.TrivialResolver(filteredA, filteredB)
	}
}

// removalTargets returns the set of userNames the REMOVE_MEMBER
// actions in branch target, keyed by the removed member's userName.
func removalTargets(branch []*graph.Link) map[string]bool {
	targets := make(map[string]bool)
	for _, link := range branch {
		action, err := DecodeAction(link.Payload)
		if err != nil || action.Kind != ActionRemoveMember {
			continue
		}
		targets[action.UserName] = true
	}
	return targets
}

// dropWritesByRemoved filters out every link authored by a userName
// present in removed — the writes a concurrently-removed member made
// on a branch that never saw their removal.
func dropWritesByRemoved(branch []*graph.Link, removed map[string]bool) []*graph.Link {
	if len(removed) == 0 {
		return branch
	}
	filtered := make([]*graph.Link, 0, len(branch))
	for _, link := range branch {
		if removed[link.UserName] {
			continue
		}
		filtered = append(filtered, link)
	}
	return filtered
}

// dropMutualAdminRemovals detects the case where branchA's author
// removes branchB's author and vice versa — two admins each removing
// the other — and drops the REMOVE_MEMBER link authored by whichever
// of the two sorts lower under [codec.DomainSort], so both peers
// resolving the same merge agree on which removal survives.
func dropMutualAdminRemovals(state *TeamState, branchA, branchB []*graph.Link) ([]*graph.Link, []*graph.Link) {
	for _, linkA := range branchA {
		actionA, err := DecodeAction(linkA.Payload)
		if err != nil || actionA.Kind != ActionRemoveMember {
			continue
		}
		if !state.IsAdmin(linkA.UserName) || !state.IsAdmin(actionA.UserName) {
			continue
		}
		for _, linkB := range branchB {
			actionB, err := DecodeAction(linkB.Payload)
			if err != nil || actionB.Kind != ActionRemoveMember {
				continue
			}
			if linkB.UserName != actionA.UserName || actionB.UserName != linkA.UserName {
				continue
			}
			// linkA's author removes linkB's author, and linkB's
			// author removes linkA's author: a mutual admin removal.
			loser := linkA.UserName
			if sortKey(linkB.UserName) < sortKey(linkA.UserName) {
				loser = linkB.UserName
			}
			if loser == linkA.UserName {
				return removeLink(branchA, linkA), branchB
			}
			return branchA, removeLink(branchB, linkB)
		}
	}
	return branchA, branchB
}

func sortKey(userName string) string {
	hash := codec.HashUnder(codec.DomainSort, []byte(userName))
	return hash.String()
}

func removeLink(branch []*graph.Link, target *graph.Link) []*graph.Link {
	filtered := make([]*graph.Link, 0, len(branch)-1)
	for _, link := range branch {
		if link == target {
			continue
		}
		filtered = append(filtered, link)
	}
	return filtered
}
