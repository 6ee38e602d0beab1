// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import "fmt"

// GetSequence linearizes g from its root to its head using resolver
// to interleave concurrent branches. See [GetSequenceRange] for the
// general, subrange-capable form this delegates to.
func (g *Graph) GetSequence(resolver Resolver) ([]*Link, error) {
	return g.GetSequenceRange(resolver, g.Root, g.Head)
}

// GetSequenceRange linearizes the portion of g between root and head
// (both inclusive), per spec §4.C's algorithm: walk head backward via
// Prev; at a merge link, find the nearest common predecessor p of the
// two branches it joined; if p precedes root, root lies inside one of
// the two branches so only that branch is relevant and the other (and
// the resolver) is skipped entirely; otherwise recursively sequence
// both branches from p (exclusive) and ask resolver to interleave
// them. Merge links never appear in the output.
func (g *Graph) GetSequenceRange(resolver Resolver, root, head Hash) ([]*Link, error) {
	return g.sequenceTo(resolver, root, head)
}

// sequenceTo returns the ordered, merge-link-free sequence of links
// from root to target, both inclusive, where root acts as the
// recursion's lower bound rather than necessarily g.Root — callers
// sequencing one branch of a merge pass that branch's common
// ancestor as root.
func (g *Graph) sequenceTo(resolver Resolver, root, target Hash) ([]*Link, error) {
	if target == root {
		link, ok := g.Links[root]
		if !ok {
			return nil, fmt.Errorf("graph: unknown link %s", root)
		}
		return []*Link{link}, nil
	}

	link, ok := g.Links[target]
	if !ok {
		return nil, fmt.Errorf("graph: unknown link %s", target)
	}

	if link.Kind != Merge {
		prefix, err := g.sequenceTo(resolver, root, link.Prev)
		if err != nil {
			return nil, err
		}
		return append(prefix, link), nil
	}

	branchHeadA, branchHeadB := link.Body[0], link.Body[1]
	commonAncestor, err := g.GetCommonPredecessor(branchHeadA, branchHeadB)
	if err != nil {
		return nil, err
	}

	if commonAncestor != root && g.IsPredecessor(commonAncestor, root) {
		// root lies on one of the two branches; the merge's other
		// side, and everything at or before the common ancestor, is
		// outside the requested range.
		branchHead := branchHeadA
		if !g.isPredecessorOrEqual(root, branchHeadA) {
			branchHead = branchHeadB
		}
		return g.sequenceTo(resolver, root, branchHead)
	}

	prefix, err := g.sequenceTo(resolver, root, commonAncestor)
	if err != nil {
		return nil, err
	}

	branchA, err := g.sequenceExclusive(resolver, commonAncestor, branchHeadA)
	if err != nil {
		return nil, err
	}
	branchB, err := g.sequenceExclusive(resolver, commonAncestor, branchHeadB)
	if err != nil {
		return nil, err
	}

	merged := resolver(branchA, branchB)
	result := make([]*Link, 0, len(prefix)+len(merged))
	result = append(result, prefix...)
	result = append(result, merged...)
	return result, nil
}

// sequenceExclusive returns the links strictly after from, up to and
// including to.
func (g *Graph) sequenceExclusive(resolver Resolver, from, to Hash) ([]*Link, error) {
	if from == to {
		return nil, nil
	}
	inclusive, err := g.sequenceTo(resolver, from, to)
	if err != nil {
		return nil, err
	}
	return inclusive[1:], nil
}
