// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/keyset"
	"github.com/bureau-foundation/concord/lib/team"
)

// cloneGraph returns a graph sharing none of g's Links map with g, so
// a candidate append or merge can be attempted and discarded without
// ever mutating the live graph a concurrent reader might be walking.
func cloneGraph(g *graph.Graph) *graph.Graph {
	links := make(map[graph.Hash]*graph.Link, len(g.Links))
	for hash, link := range g.Links {
		links[hash] = link
	}
	return &graph.Graph{Root: g.Root, Head: g.Head, Links: links}
}

// dispatch is spec §5's serial dispatch: append (build), re-reduce
// the whole candidate graph, and only on success does it replace the
// live graph, state, and keyring and emit [EventUpdated]. Must be
// called with t.mu held. build appends to (or merges into) candidate
// and returns only an error; a build error or a validator rejection
// inside reduce leaves the live team untouched.
func (t *Team) dispatch(build func(candidate *graph.Graph) error) error {
	candidate := cloneGraph(t.graph)
	if err := build(candidate); err != nil {
		return err
	}
	return t.commit(candidate)
}

// commit re-reduces candidate under [team.MembershipResolver] seeded
// from the team's current state, and on success replaces the live
// graph/state/keyring and emits [EventUpdated]. The resolver's state
// parameter is meant to be the state as of two merged branches'
// common ancestor (spec §4.C); a single team instance's own serial
// dispatch never interleaves truly concurrent branches against
// itself, so the most recently committed state is always the right
// approximation here — the same simplification [lib/connection]
// relies on when it merges a peer's graph in.
func (t *Team) commit(candidate *graph.Graph) error {
	resolver := team.MembershipResolver(t.state)
	sequence, err := candidate.GetSequence(resolver)
	if err != nil {
		return fmt.Errorf("core: sequencing candidate graph: %w", err)
	}
	newState, err := team.Reduce(sequence)
	if err != nil {
		return err
	}

	newKeyring, err := keyset.Compute(deviceRootKeyset(t.device), newState.Lockboxes)
	if err != nil {
		return fmt.Errorf("core: recomputing keyring: %w", err)
	}

	oldKeyring := t.keyring
	t.graph = candidate
	t.state = newState
	t.keyring = newKeyring
	closeKeyring(oldKeyring, deviceRootKeyset(t.device).ID)

	t.logger.Debug("team state updated", "team", t.state.TeamName, "head", t.graph.Head.String())
	t.emit(Event{Kind: EventUpdated})
	return nil
}

// append builds a non-root link carrying action, authored by the
// local device, and dispatches it.
func (t *Team) append(action *team.Action) error {
	return t.dispatch(func(candidate *graph.Graph) error {
		payload, err := action.Encode()
		if err != nil {
			return err
		}
		_, err = candidate.Append(graph.AppendParams{
			Payload:   payload,
			UserName:  t.userName,
			DeviceID:  t.device.ID,
			Timestamp: t.clock(),
		}, t.device.Keys.SigningSecret)
		return err
	})
}

// Merge folds other — typically a peer's graph received during a
// [lib/connection] SYNC round — into this team instance and
// dispatches the result, per spec §5's "replication is eventually
// consistent … states converge once both heads are known."
func (t *Team) Merge(other *graph.Graph) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dispatch(func(candidate *graph.Graph) error {
		return candidate.Merge(other)
	})
}

// Graph returns the team instance's current signature graph. The
// returned value must not be mutated; callers that need a graph to
// hand to [Team.Merge] on another instance should treat it as
// read-only and let Merge clone internally.
func (t *Team) Graph() *graph.Graph {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.graph
}

// State returns a snapshot of the team instance's current reduced
// state. Safe to call concurrently with dispatch; [team.TeamState] is
// itself never mutated in place once built (see [team.Reduce]).
func (t *Team) State() *team.TeamState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
