// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides concord's standard canonical-encoding and
// keyed-hashing configuration.
//
// Every link on the signature graph is hashed and signed over its
// canonical encoding, and the serialized-graph wire format (spec §6)
// is a map of hash to link. Both depend on one property: the same
// logical value always produces identical bytes, on any peer, any
// time. Plain encoding/json does not promise this (map key order is
// an implementation detail of encoding/json's current version, not
// part of its documented contract); CBOR's Core Deterministic
// Encoding (RFC 8949 §4.2) does — sorted map keys, smallest integer
// encoding, no indefinite-length items.
//
// For buffer-oriented operations (links, lockboxes, team state):
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (connection wire messages):
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
//
// [Hash] provides the domain-separated keyed hash spec §4.A calls for
// (`hash(domain, data) → bytes`), built on BLAKE3 keyed mode so that
// the same bytes hashed under two different domains (a link hash vs.
// a device id vs. a deterministic-sort key) never collide.
//
// CLI output (cmd/concord) is plain text written with fmt and
// text/tabwriter — a human-facing format with no hash-stability
// requirement, so it does not route through this package.
package codec
