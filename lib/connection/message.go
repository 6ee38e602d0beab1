// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"github.com/bureau-foundation/concord/lib/crypto"
	"github.com/bureau-foundation/concord/lib/graph"
	"github.com/bureau-foundation/concord/lib/invitation"
)

// Kind discriminates spec §6's tagged connection message union, the
// same Kind-plus-optional-fields shape [github.com/bureau-foundation/concord/lib/team.Action]
// uses for the signature graph's own actions.
type Kind int

const (
	RequestIdentity Kind = iota
	ClaimIdentity
	ChallengeIdentity
	ProveIdentity
	AcceptIdentity
	RejectIdentity
	AcceptInvitation
	Sync
	LocalUpdate
	Seed
	EncryptedMessage
	Disconnect
	ErrorMessage
	LocalError
)

// String returns the wire-style uppercase-with-underscores name of k,
// used in log lines.
func (k Kind) String() string {
	switch k {
	case RequestIdentity:
		return "REQUEST_IDENTITY"
	case ClaimIdentity:
		return "CLAIM_IDENTITY"
	case ChallengeIdentity:
		return "CHALLENGE_IDENTITY"
	case ProveIdentity:
		return "PROVE_IDENTITY"
	case AcceptIdentity:
		return "ACCEPT_IDENTITY"
	case RejectIdentity:
		return "REJECT_IDENTITY"
	case AcceptInvitation:
		return "ACCEPT_INVITATION"
	case Sync:
		return "SYNC"
	case LocalUpdate:
		return "LOCAL_UPDATE"
	case Seed:
		return "SEED"
	case EncryptedMessage:
		return "ENCRYPTED_MESSAGE"
	case Disconnect:
		return "DISCONNECT"
	case ErrorMessage:
		return "ERROR"
	case LocalError:
		return "LOCAL_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Challenge is the nonce a side issues to make the peer prove it
// holds the signing secret for the device identity it claimed, per
// spec §4.F step 4. Scope binds the signature to this one challenger
// so it can never be replayed against a different peer: the challenger
// puts its own device id in Scope, so the signed material names it
// instead of being the bare nonce.
type Challenge struct {
	Nonce     []byte `cbor:"nonce"`
	Scope     string `cbor:"scope"`
	Timestamp int64  `cbor:"timestamp"`
}

// Message is one connection protocol message. Only the fields its
// Kind names are meaningful; the rest are zero. See spec §6 for the
// full tagged union this mirrors.
type Message struct {
	Kind Kind `cbor:"kind"`

	// CLAIM_IDENTITY (existing member/server): who the sender claims
	// to be.
	UserName string `cbor:"user_name,omitempty"`
	DeviceID string `cbor:"device_id,omitempty"`

	// CLAIM_IDENTITY (invitee): the invitation proof and the
	// principal it is bound to, in place of UserName/DeviceID.
	Proof     *invitation.ProofOfInvitation `cbor:"proof,omitempty"`
	Principal *invitation.RedactedPrincipal `cbor:"principal,omitempty"`

	// CHALLENGE_IDENTITY / PROVE_IDENTITY.
	Challenge *Challenge       `cbor:"challenge,omitempty"`
	Signature crypto.Signature `cbor:"signature,omitempty"`

	// REJECT_IDENTITY / DISCONNECT / ERROR / LOCAL_ERROR.
	Message string `cbor:"message,omitempty"`

	// ACCEPT_INVITATION: the team's current graph, serialized. The
	// invitee's own device root keyset is never transmitted — it
	// derives its own keyring from this graph's lockboxes via
	// [github.com/bureau-foundation/concord/lib/core.LoadFromGraph],
	// exactly as [github.com/bureau-foundation/concord/lib/core.Load]
	// does for a restored team instance. Spec §4.F step 3 also names a
	// "teamKeyring" alongside the serialized graph; no such field is
	// sent. A member invitee finds the lockboxes sealed to it at
	// admission in the graph; a device invitee finds none, since a
	// device admission posts no lockboxes (see DESIGN.md).
	SerializedGraph []byte `cbor:"serialized_graph,omitempty"`

	// SYNC: the sender's current head and full known-hash set, plus
	// the links the sender believes the peer is missing (see
	// connection.go's sendSync and handleSync for how the delta is
	// computed).
	Head        graph.Hash    `cbor:"head,omitempty"`
	KnownHashes []graph.Hash  `cbor:"known_hashes,omitempty"`
	Links       []*graph.Link `cbor:"links,omitempty"`

	// SEED: a 32-byte random contribution sealed to the peer's member
	// encryption public key.
	EncryptedSeed []byte `cbor:"encrypted_seed,omitempty"`

	// ENCRYPTED_MESSAGE: an AEAD ciphertext under the negotiated
	// session key.
	Ciphertext []byte `cbor:"ciphertext,omitempty"`
}

// Numbered wraps a [Message] with a monotone per-sender sequence
// number, spec §4.F's "messages numbered per side" ordering
// safeguard: a receiver that sees an index outside its expected small
// window rejects it and requests a resync rather than applying it.
type Numbered struct {
	Index   uint32  `cbor:"index"`
	Message Message `cbor:"message"`
}
