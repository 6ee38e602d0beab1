// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
)

// wireForm is the canonical serialized shape of a [Graph], spec §6:
// "`{ root, head, links: { <hash>: <link> } }`. Links serialize with
// sorted keys; hashes are base-encoded keyed hashes over that
// canonical form." codec.Marshal's CBOR Core Deterministic Encoding
// already sorts map keys, so wireForm needs no further ordering logic
// of its own.
type wireForm struct {
	Root  Hash           `cbor:"root"`
	Head  Hash           `cbor:"head"`
	Links map[Hash]*Link `cbor:"links"`
}

// Serialize encodes g in its canonical wire form.
func (g *Graph) Serialize() ([]byte, error) {
	data, err := codec.Marshal(wireForm{Root: g.Root, Head: g.Head, Links: g.Links})
	if err != nil {
		return nil, fmt.Errorf("graph: serializing: %w", err)
	}
	return data, nil
}

// Deserialize decodes a graph previously produced by [Graph.Serialize].
// It does not verify signatures — callers that load an untrusted blob
// should call [Graph.Validate] afterward.
func Deserialize(data []byte) (*Graph, error) {
	var wire wireForm
	if err := codec.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("graph: deserializing: %w", err)
	}
	if wire.Links == nil {
		wire.Links = make(map[Hash]*Link)
	}
	return &Graph{Root: wire.Root, Head: wire.Head, Links: wire.Links}, nil
}
