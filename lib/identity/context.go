// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

// Context is the identity a connection presents when it starts (spec
// §4.G, selected before the connection's authenticating state runs):
// exactly one of [MemberContext], [ServerContext], or
// [InviteeContext].
type Context interface {
	isContext()
}

// MemberContext is an already-admitted member connecting from one of
// its enrolled devices, claiming deviceId directly in CLAIM_IDENTITY
// (spec §4.F step 2).
type MemberContext struct {
	User   string
	Device *Device
	Team   string
}

func (MemberContext) isContext() {}

// ServerContext is a team-hosting server presenting its own server
// identity rather than a member's.
type ServerContext struct {
	Server string
}

func (ServerContext) isContext() {}

// InviteeContext is a connection from a principal not yet admitted,
// carrying the seed [invitation.Accept] derives a
// [invitation.ProofOfInvitation] from; Accept needs only that seed and
// the claimed identity, not the posted invitation's sealed payload.
type InviteeContext struct {
	User           string
	Device         *Device
	InvitationSeed string
}

func (InviteeContext) isContext() {}
