// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package invitation implements spec component E: sealed team/device
// invitations keyed by a stretched shared secret, and the
// accept/validate proof flow that lets an invitee demonstrate
// knowledge of that secret without ever transmitting it.
//
// [Create] normalizes and stretches a human-chosen secret key into a
// single-use Ed25519 keypair, then seals an [Payload] describing who
// is being invited and under what terms with the team's AEAD key,
// producing an [Invitation] fit to post on the signature graph.
//
// [Accept] re-derives the same single-use keypair from the secret key
// and signs the invitee's claimed identity, producing a
// [ProofOfInvitation] the invitee hands to an admitting member.
//
// [Validate] checks a proof against its posted invitation: not
// revoked, not exhausted, not expired, the claimed identity matches
// the sealed payload, and the proof's signature verifies against the
// invitation's public signing key.
package invitation
