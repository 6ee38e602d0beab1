// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/secret"
)

// Graph is a hash-linked signature DAG: exactly one root, exactly one
// head, every other link reachable from the head.
type Graph struct {
	Root  Hash
	Head  Hash
	Links map[Hash]*Link
}

// CreateParams carries the fields needed to mint a root link.
type CreateParams struct {
	Payload       []byte
	UserName      string
	DeviceID      string
	ContextPublic []byte
	Timestamp     int64
}

// Create mints a root link signed by signingSeed and returns a new
// [Graph] whose root and head are both that link.
func Create(params CreateParams, signingSeed *secret.Buffer) (*Graph, error) {
	link := &Link{
		Kind:          Root,
		Payload:       params.Payload,
		Timestamp:     params.Timestamp,
		UserName:      params.UserName,
		DeviceID:      params.DeviceID,
		ContextPublic: params.ContextPublic,
	}
	if err := link.sign(signingSeed); err != nil {
		return nil, err
	}
	hash, err := link.Hash()
	if err != nil {
		return nil, err
	}

	return &Graph{
		Root: hash,
		Head: hash,
		Links: map[Hash]*Link{
			hash: link,
		},
	}, nil
}

// AppendParams carries the fields needed to extend the head.
type AppendParams struct {
	Payload   []byte
	UserName  string
	DeviceID  string
	Timestamp int64
}

// Append builds a non-root link with Prev set to the current head,
// signs it with signingSeed, inserts it, and advances the head.
// Returns the new link.
func (g *Graph) Append(params AppendParams, signingSeed *secret.Buffer) (*Link, error) {
	link := &Link{
		Kind:      NonRoot,
		Prev:      g.Head,
		Payload:   params.Payload,
		Timestamp: params.Timestamp,
		UserName:  params.UserName,
		DeviceID:  params.DeviceID,
	}
	if err := link.sign(signingSeed); err != nil {
		return nil, err
	}
	hash, err := link.Hash()
	if err != nil {
		return nil, err
	}
	if _, exists := g.Links[hash]; exists {
		return nil, fmt.Errorf("graph: link %s already present", hash)
	}

	g.Links[hash] = link
	g.Head = hash
	return link, nil
}

// Merge unions other into g. Both graphs must share a root. A new
// merge link is created whose Body is {g.Head, other.Head} sorted by
// hash, and becomes the new head. If the two heads are already equal,
// Merge is a no-op (there is nothing to join).
func (g *Graph) Merge(other *Graph) error {
	if g.Root != other.Root {
		return fmt.Errorf("graph: cannot merge graphs with different roots (%s vs %s)", g.Root, other.Root)
	}
	for hash, link := range other.Links {
		if _, exists := g.Links[hash]; !exists {
			g.Links[hash] = link
		}
	}
	if g.Head == other.Head {
		return nil
	}

	body := [2]Hash{g.Head, other.Head}
	if hashLess(body[1], body[0]) {
		body[0], body[1] = body[1], body[0]
	}
	mergeLink := &Link{Kind: Merge, Body: body}
	hash, err := mergeLink.Hash()
	if err != nil {
		return err
	}
	if _, exists := g.Links[hash]; !exists {
		g.Links[hash] = mergeLink
	}
	g.Head = hash
	return nil
}

// GetHead returns g's current head hash.
func (g *Graph) GetHead() Hash { return g.Head }

// GetRoot returns g's root hash.
func (g *Graph) GetRoot() Hash { return g.Root }

// GetPredecessors returns the direct predecessors of the link at
// hash: zero for the root, one for an ordinary link, two for a merge.
func (g *Graph) GetPredecessors(hash Hash) ([]Hash, error) {
	link, ok := g.Links[hash]
	if !ok {
		return nil, fmt.Errorf("graph: unknown link %s", hash)
	}
	return predecessorsOf(link), nil
}

// GetSuccessors returns every link that directly references hash as
// a predecessor (via Prev or Body).
func (g *Graph) GetSuccessors(hash Hash) []Hash {
	var successors []Hash
	for candidateHash, link := range g.Links {
		for _, predecessor := range predecessorsOf(link) {
			if predecessor == hash {
				successors = append(successors, candidateHash)
				break
			}
		}
	}
	return successors
}

func predecessorsOf(link *Link) []Hash {
	switch link.Kind {
	case Merge:
		return []Hash{link.Body[0], link.Body[1]}
	case Root:
		return nil
	default:
		return []Hash{link.Prev}
	}
}

func hashLess(a, b Hash) bool {
	return a.String() < b.String()
}
