// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concord/cmd/concord/cli"
	"github.com/bureau-foundation/concord/lib/core"
	"github.com/bureau-foundation/concord/lib/identity"
	"github.com/bureau-foundation/concord/lib/invitation"
	"github.com/bureau-foundation/concord/lib/team"
)

// admitCommand returns the "admit" command: a local-loopback
// shortcut for spec §4.F's handshake, useful for single-machine demos
// and tests that don't want to stand up two connected processes. The
// invitee's device identity is loaded from the local state directory,
// or generated and saved there if this is its first use, and the
// admitting member runs this accepting the invitee's
// own proof of invitation on their behalf — the real accept/validate
// split spec §4.F's Connection protocol runs over the wire, collapsed
// here into one process for convenience.
func admitCommand(env *Environment) *cli.Command {
	var (
		userName      string
		deviceName    string
		invitationID  string
		secret        string
		inviteeName   string
		inviteeDevice string
	)

	return &cli.Command{
		Name:        "admit",
		Summary:     "Admit an invitee locally, without a live connection",
		Description: "Accept and admit a posted invitation in one step, for single-machine demos.",
		Usage:       "concord admit [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("admit", pflag.ContinueOnError)
			flagSet.StringVar(&userName, "user", "", "the admitting member's user name (required)")
			flagSet.StringVar(&deviceName, "device", "primary", "the admitting member's device name")
			flagSet.StringVar(&invitationID, "invitation", "", "the posted invitation's id (required)")
			flagSet.StringVar(&secret, "secret", "", "the invitation secret the invitee was given (required)")
			flagSet.StringVar(&inviteeName, "invitee-user", "", "the invitee's user name (required for a member invitation)")
			flagSet.StringVar(&inviteeDevice, "invitee-device", "primary", "the invitee's device name")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord admit [flags] <team-name>")
			}
			if userName == "" || invitationID == "" || secret == "" {
				return fmt.Errorf("--user, --invitation, and --secret are required")
			}

			admittingTeam, admittingDevice, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer admittingDevice.Close()

			posted, ok := admittingTeam.State().Invitations[invitationID]
			if !ok {
				return fmt.Errorf("invitation %s not known to team %q", invitationID, args[0])
			}

			if posted.Type == team.InvitationTypeDevice {
				return admitDeviceLocally(env, admittingTeam, invitationID, secret, inviteeName, inviteeDevice)
			}
			if inviteeName == "" {
				return fmt.Errorf("--invitee-user is required for a member invitation")
			}
			return admitMemberLocally(env, admittingTeam, invitationID, secret, inviteeName, inviteeDevice)
		},
	}
}

func admitMemberLocally(env *Environment, admittingTeam *core.Team, invitationID, secret, inviteeName, inviteeDevice string) error {
	device, err := env.device(inviteeName, inviteeDevice)
	if err != nil {
		return err
	}
	defer device.Close()

	principal := invitation.RedactedPrincipal{
		UserName: inviteeName,
		Signing:  device.Keys.SigningPublic,
		Encrypt:  device.Keys.EncryptPublic,
	}
	proof, err := invitation.Accept(secret, invitation.Member, principal)
	if err != nil {
		return fmt.Errorf("accepting invitation: %w", err)
	}
	if proof.ID != invitationID {
		return fmt.Errorf("this secret belongs to invitation %s, not %s", proof.ID, invitationID)
	}

	roles, err := admittingTeam.RolesFor(invitationID)
	if err != nil {
		return fmt.Errorf("looking up invitation roles: %w", err)
	}

	member := &team.Member{
		UserName: inviteeName,
		Keys:     team.Keys{Signing: device.Keys.SigningPublic, Encrypt: device.Keys.EncryptPublic},
		Devices: map[string]team.DevicePublic{
			device.ID: {DeviceID: device.ID, Keys: team.Keys{Signing: device.Keys.SigningPublic, Encrypt: device.Keys.EncryptPublic}},
		},
	}
	if err := admittingTeam.Admit(core.AdmitParams{Proof: proof, Member: member, Roles: roles}); err != nil {
		return fmt.Errorf("admitting %q: %w", inviteeName, err)
	}
	if err := saveTeam(admittingTeam); err != nil {
		return err
	}

	fmt.Printf("admitted %s/%s\n", inviteeName, device.ID)
	return nil
}

func admitDeviceLocally(env *Environment, admittingTeam *core.Team, invitationID, secret, inviteeName, inviteeDevice string) error {
	if inviteeName == "" {
		return fmt.Errorf("--invitee-user is required for a device invitation (the existing member this device enrolls under)")
	}
	if _, ok := admittingTeam.Member(inviteeName); !ok {
		return fmt.Errorf("%s is not a member of this team", inviteeName)
	}

	device, err := env.device(inviteeName, inviteeDevice)
	if err != nil {
		return err
	}
	defer device.Close()

	principal := invitation.RedactedPrincipal{
		DeviceID: identity.DeviceID(inviteeName, inviteeDevice),
		Signing:  device.Keys.SigningPublic,
		Encrypt:  device.Keys.EncryptPublic,
	}
	proof, err := invitation.Accept(secret, invitation.Device, principal)
	if err != nil {
		return fmt.Errorf("accepting invitation: %w", err)
	}
	if proof.ID != invitationID {
		return fmt.Errorf("this secret belongs to invitation %s, not %s", proof.ID, invitationID)
	}

	err = admittingTeam.AdmitDevice(core.AdmitDeviceParams{
		Proof:    proof,
		UserName: inviteeName,
		Device: &team.DevicePublic{
			DeviceID: device.ID,
			Keys:     team.Keys{Signing: device.Keys.SigningPublic, Encrypt: device.Keys.EncryptPublic},
		},
	})
	if err != nil {
		return fmt.Errorf("admitting device %q: %w", device.ID, err)
	}
	if err := saveTeam(admittingTeam); err != nil {
		return err
	}

	fmt.Printf("admitted device %s for %s\n", device.ID, inviteeName)
	return nil
}
