// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/codec"
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/secret"
)

// Hash identifies a link by the keyed hash of its canonical encoding.
type Hash = codec.Hash

// Kind discriminates the three link shapes spec §3 defines.
type Kind int

const (
	// Root is the single link that begins a graph.
	Root Kind = iota

	// NonRoot is an ordinary signed link extending the head.
	NonRoot

	// Merge is an unsigned link joining two divergent heads.
	Merge
)

// Link is a node of the signature graph. Depending on Kind, only a
// subset of fields is meaningful:
//
//   - Root: Payload, Timestamp, UserName, DeviceID, ContextPublic, Signature.
//   - NonRoot: the same, plus Prev; ContextPublic is typically empty
//     (the author's public keys are already known from team state).
//   - Merge: only Body; every other field is zero, and the link is
//     never signed — it is content-addressed by the pair it joins.
type Link struct {
	Kind Kind `cbor:"kind"`

	// Prev is the hash of the link this one extends. Zero for Root
	// and Merge links.
	Prev Hash `cbor:"prev,omitempty"`

	// Payload is the canonically-encoded action this link carries —
	// opaque to the graph; the team reducer interprets it.
	Payload []byte `cbor:"payload,omitempty"`

	// Timestamp is the author's wall-clock time at authoring, in
	// Unix seconds. Advisory only — the graph's ordering comes from
	// Prev/Body, never from Timestamp.
	Timestamp int64 `cbor:"timestamp,omitempty"`

	// UserName and DeviceID identify the link's author.
	UserName string `cbor:"user_name,omitempty"`
	DeviceID string `cbor:"device_id,omitempty"`

	// ContextPublic is the founding member's public keys snapshot,
	// present only on the Root link — the one point in the graph
	// where no prior team state exists to resolve an author's public
	// key, so the key must travel with the link itself.
	ContextPublic []byte `cbor:"context_public,omitempty"`

	// Signature is the author's Ed25519 signature over this link's
	// canonical encoding with Signature itself zeroed. Zero for Merge
	// links.
	Signature crypto.Signature `cbor:"signature,omitempty"`

	// Body is the pair of heads a Merge link joins, sorted so the
	// same pair always hashes identically regardless of which side
	// initiated the merge. Zero for Root and NonRoot links.
	Body [2]Hash `cbor:"body,omitempty"`
}

// signableEncoding returns l's canonical encoding with Signature
// zeroed — the bytes that are signed and later verified.
func signableEncoding(l *Link) ([]byte, error) {
	unsigned := *l
	unsigned.Signature = crypto.Signature{}
	data, err := codec.Marshal(unsigned)
	if err != nil {
		return nil, fmt.Errorf("graph: encoding link for signing: %w", err)
	}
	return data, nil
}

// Hash computes l's content hash. A Merge link hashes only its sorted
// Body — "content-addressed by the set it joins", per spec §3 — so
// the hash is identical no matter which peer authored the merge.
// Every other link hashes its full canonical encoding, signature
// included.
func (l *Link) Hash() (Hash, error) {
	if l.Kind == Merge {
		data, err := codec.Marshal(l.Body)
		if err != nil {
			return Hash{}, fmt.Errorf("graph: encoding merge body for hashing: %w", err)
		}
		return codec.HashLink(data), nil
	}
	data, err := codec.Marshal(*l)
	if err != nil {
		return Hash{}, fmt.Errorf("graph: encoding link for hashing: %w", err)
	}
	return codec.HashLink(data), nil
}

// sign computes l.Signature in place over l's signable encoding.
func (l *Link) sign(signingSeed *secret.Buffer) error {
	data, err := signableEncoding(l)
	if err != nil {
		return err
	}
	signature, err := crypto.Sign(signingSeed, data)
	if err != nil {
		return fmt.Errorf("graph: signing link: %w", err)
	}
	l.Signature = signature
	return nil
}

// Verify reports whether l's signature is valid under public. Always
// true (vacuously) for Merge links, which carry no signature.
func (l *Link) Verify(public crypto.SigningPublicKey) (bool, error) {
	if l.Kind == Merge {
		return true, nil
	}
	data, err := signableEncoding(l)
	if err != nil {
		return false, err
	}
	return crypto.Verify(public, data, l.Signature), nil
}
