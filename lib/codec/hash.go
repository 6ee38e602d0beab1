// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/zeebo/blake3"
)

// base64Encoding is the URL-safe, unpadded base64 alphabet used for
// every base-encoded byte output surfaced externally (spec §4.A: "all
// byte outputs are base-encoded when surfaced externally").
var base64Encoding = base64.RawURLEncoding

// HashSize is the length in bytes of a [Hash].
const HashSize = 32

// Hash is a 32-byte BLAKE3 digest, always computed under a domain key
// (see [Domain]). Hashes from different domains are never comparable
// even if the underlying bytes happen to match — callers should treat
// a Hash as meaningful only alongside the domain it was produced under.
type Hash [HashSize]byte

// Domain is a 32-byte key for BLAKE3 keyed hashing. Domain separation
// ensures that identical input bytes produce different digests in
// different contexts (a link hash can never collide with a device id
// derived from the same bytes), without giving up any property of
// plain BLAKE3 — keyed mode treats the key as an opaque 32-byte value.
type Domain [32]byte

// NewDomain builds a [Domain] from a readable ASCII tag, zero-padded
// (or truncated) to 32 bytes. Readable tags make domain keys
// inspectable in hex dumps and debuggers. Panics if tag is longer than
// 32 bytes — a coding error, not a runtime condition.
func NewDomain(tag string) Domain {
	if len(tag) > 32 {
		panic("codec: domain tag longer than 32 bytes: " + tag)
	}
	var domain Domain
	copy(domain[:], tag)
	return domain
}

// Well-known hash domains used across concord. Changing any of these
// invalidates every hash computed under it.
var (
	// DomainLink hashes a canonically-encoded graph link.
	DomainLink = NewDomain("concord.link")

	// DomainDeviceID derives a device id from (userID, deviceName).
	DomainDeviceID = NewDomain("concord.device_id")

	// DomainInvitationID derives an invitation id from its derived
	// signing public key.
	DomainInvitationID = NewDomain("concord.invitation_id")

	// DomainSession derives a connection's shared session key from
	// both peers' seed contributions.
	DomainSession = NewDomain("concord.session")

	// DomainSort is used by the graph's default deterministic branch
	// sort — never for anything security-relevant.
	DomainSort = NewDomain("concord.sort")
)

// HashUnder computes the keyed BLAKE3 digest of data under domain.
func HashUnder(domain Domain, data []byte) Hash {
	hasher, err := blake3.NewKeyed(domain[:])
	if err != nil {
		// NewKeyed only fails on a wrong-size key, which NewDomain's
		// fixed-size array makes impossible.
		panic("codec: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var result Hash
	copy(result[:], hasher.Sum(nil))
	return result
}

// HashLink computes the canonical hash of a CBOR-encoded link. Callers
// pass the already-canonically-encoded bytes (see Marshal).
func HashLink(encodedLink []byte) Hash {
	return HashUnder(DomainLink, encodedLink)
}

// IsZero reports whether h is the zero hash (uninitialized).
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the base-encoded form of h, used wherever a hash is
// surfaced externally (hash map keys in the serialized graph, log
// lines, CLI output).
func (h Hash) String() string {
	return base64Encoding.EncodeToString(h[:])
}

// MarshalText implements encoding.TextMarshaler so Hash serializes as
// a base-encoded string in both CBOR (via the codec's TextMarshaler
// option) and JSON.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	decoded, err := base64Encoding.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("codec: invalid base-encoded hash %q: %w", text, err)
	}
	if len(decoded) != HashSize {
		return fmt.Errorf("codec: hash has %d bytes, want %d", len(decoded), HashSize)
	}
	copy(h[:], decoded)
	return nil
}

// ParseHash decodes a base-encoded hash string.
func ParseHash(s string) (Hash, error) {
	var h Hash
	err := h.UnmarshalText([]byte(s))
	return h, err
}
