// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package connection

import (
	"fmt"

	"github.com/bureau-foundation/concord/lib/identity"
	"github.com/bureau-foundation/concord/lib/invitation"
)

// Context selects what a [Connection] claims to be at the start of
// the handshake, per spec §4.G. Exactly one of [MemberContext],
// [ServerContext], or [InviteeContext] is ever in play for a given
// connection.
type Context interface {
	// device returns the local principal's own device, whose signing
	// key authors PROVE_IDENTITY and (once admitted) every graph link.
	device() *identity.Device

	// claim builds the outgoing CLAIM_IDENTITY fields for this
	// context: an existing principal claims userName/deviceID; an
	// invitee claims a proof of invitation instead.
	claim() (Message, error)
}

// MemberContext is an already-admitted human member reconnecting to a
// peer who (presumably) already knows their device.
type MemberContext struct {
	UserName string
	Device   *identity.Device
}

func (c MemberContext) device() *identity.Device { return c.Device }

func (c MemberContext) claim() (Message, error) {
	return Message{Kind: ClaimIdentity, UserName: c.UserName, DeviceID: c.Device.ID}, nil
}

// ServerContext is a non-human principal (spec §6's addServer) —
// identical to [MemberContext] except its UserName is conventionally
// the server's host name, per [github.com/bureau-foundation/concord/lib/core.Server].
type ServerContext struct {
	Host   string
	Device *identity.Device
}

func (c ServerContext) device() *identity.Device { return c.Device }

func (c ServerContext) claim() (Message, error) {
	return Message{Kind: ClaimIdentity, UserName: c.Host, DeviceID: c.Device.ID}, nil
}

// InviteeContext is a newcomer who has not yet been admitted to the
// team, presenting a secret invitation key in place of an existing
// deviceId. UserName must already be known for a member invitation
// (the invitation itself names who it admits — spec §7's soundness
// invariant); for a device invitation it names the existing member
// the new device is enrolled under.
type InviteeContext struct {
	UserName         string
	Device           *identity.Device
	InvitationSecret string
	InvitationKind   invitation.Kind
}

func (c InviteeContext) device() *identity.Device { return c.Device }

func (c InviteeContext) claim() (Message, error) {
	principal := invitation.RedactedPrincipal{
		UserName: c.UserName,
		DeviceID: c.Device.ID,
		Signing:  c.Device.Keys.SigningPublic,
		Encrypt:  c.Device.Keys.EncryptPublic,
	}
	proof, err := invitation.Accept(c.InvitationSecret, c.InvitationKind, principal)
	if err != nil {
		return Message{}, fmt.Errorf("connection: accepting invitation: %w", err)
	}
	return Message{Kind: ClaimIdentity, Proof: proof, Principal: &principal}, nil
}
