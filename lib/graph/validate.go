// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/crypto"
)

// KeyResolver answers "what signing key did userName's deviceID hold
// at the time link was authored?" Validate calls it once per
// non-merge link. Component D supplies the real implementation,
// walking team state as of that link's position in the graph — graph
// itself has no notion of membership, which is what keeps this
// package free of an import cycle back to lib/team.
type KeyResolver func(link *Link) (crypto.SigningPublicKey, error)

// Validate walks every link reachable from g.Head and verifies its
// signature against the key resolve reports for it. The Root link's
// signature is checked against the public key embedded in its own
// ContextPublic rather than through resolve, since no prior team state
// exists yet to resolve it from.
func (g *Graph) Validate(resolve KeyResolver) error {
	visited := make(map[Hash]bool, len(g.Links))
	return g.validateFrom(g.Head, resolve, visited)
}

func (g *Graph) validateFrom(hash Hash, resolve KeyResolver, visited map[Hash]bool) error {
	if visited[hash] {
		return nil
	}
	visited[hash] = true

	link, ok := g.Links[hash]
	if !ok {
		return fmt.Errorf("graph: unknown link %s", hash)
	}

	if link.Kind != Merge {
		public, err := g.resolveAuthorKey(link, resolve)
		if err != nil {
			return fmt.Errorf("graph: resolving author key for %s: %w", hash, err)
		}
		valid, err := link.Verify(public)
		if err != nil {
			return fmt.Errorf("graph: verifying %s: %w", hash, err)
		}
		if !valid {
			return fmt.Errorf("graph: invalid signature on link %s", hash)
		}
	}

	for _, predecessor := range predecessorsOf(link) {
		if err := g.validateFrom(predecessor, resolve, visited); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) resolveAuthorKey(link *Link, resolve KeyResolver) (crypto.SigningPublicKey, error) {
	if link.Kind == Root {
		return rootSigningKey(link)
	}
	return resolve(link)
}

// rootSigningKey extracts the founding member's signing public key
// from a Root link's ContextPublic snapshot.
func rootSigningKey(link *Link) (crypto.SigningPublicKey, error) {
	if len(link.ContextPublic) < crypto.SigningPublicKeySize {
		return crypto.SigningPublicKey{}, fmt.Errorf("graph: root link context too short for a signing key")
	}
	var public crypto.SigningPublicKey
	copy(public[:], link.ContextPublic[:crypto.SigningPublicKeySize])
	return public, nil
}
