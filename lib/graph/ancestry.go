// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import "fmt"

// ancestorDistances returns every ancestor of start (start included,
// at distance 0), reached by following Prev and, at merge links,
// both Body entries, mapped to its shortest distance from start.
func (g *Graph) ancestorDistances(start Hash) map[Hash]int {
	distances := map[Hash]int{start: 0}
	queue := []Hash{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		link, ok := g.Links[current]
		if !ok {
			continue
		}
		for _, predecessor := range predecessorsOf(link) {
			if _, seen := distances[predecessor]; !seen {
				distances[predecessor] = distances[current] + 1
				queue = append(queue, predecessor)
			}
		}
	}
	return distances
}

// IsPredecessor reports whether a is a strict ancestor of b.
func (g *Graph) IsPredecessor(a, b Hash) bool {
	if a == b {
		return false
	}
	_, found := g.ancestorDistances(b)[a]
	return found
}

// isPredecessorOrEqual reports whether a is b or a strict ancestor of b.
func (g *Graph) isPredecessorOrEqual(a, b Hash) bool {
	if a == b {
		return true
	}
	return g.IsPredecessor(a, b)
}

// GetCommonPredecessor returns the nearest common ancestor of a and
// b: the common ancestor minimizing the sum of both distances, with
// ties broken by hash order so the result is deterministic.
func (g *Graph) GetCommonPredecessor(a, b Hash) (Hash, error) {
	distancesA := g.ancestorDistances(a)
	distancesB := g.ancestorDistances(b)

	var (
		best      Hash
		bestTotal = -1
		found     bool
	)
	for candidate, distA := range distancesA {
		distB, ok := distancesB[candidate]
		if !ok {
			continue
		}
		total := distA + distB
		if !found || total < bestTotal || (total == bestTotal && hashLess(candidate, best)) {
			best, bestTotal, found = candidate, total, true
		}
	}
	if !found {
		return Hash{}, fmt.Errorf("graph: no common predecessor between %s and %s", a, b)
	}
	return best, nil
}

// GetCommonPredecessors folds [Graph.GetCommonPredecessor] over more
// than two hashes.
func (g *Graph) GetCommonPredecessors(hashes []Hash) (Hash, error) {
	if len(hashes) == 0 {
		return Hash{}, fmt.Errorf("graph: GetCommonPredecessors requires at least one hash")
	}
	common := hashes[0]
	for _, next := range hashes[1:] {
		var err error
		common, err = g.GetCommonPredecessor(common, next)
		if err != nil {
			return Hash{}, err
		}
	}
	return common, nil
}
