// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concord/cmd/concord/cli"
	"github.com/bureau-foundation/concord/lib/core"
	"github.com/bureau-foundation/concord/lib/identity"
)

// inviteCommand returns the "invite" command tree: "invite member" and
// "invite device", spec §6's `inviteMember`/`inviteDevice`.
func inviteCommand(env *Environment) *cli.Command {
	return &cli.Command{
		Name:        "invite",
		Summary:     "Invite a new member or device",
		Description: "Post a new invitation to a team, returning the id and secret an invitee needs to accept it.",
		Subcommands: []*cli.Command{
			inviteMemberCommand(env),
			inviteDeviceCommand(env),
		},
	}
}

func inviteMemberCommand(env *Environment) *cli.Command {
	var (
		userName     string
		deviceName   string
		inviteeName  string
		seed         string
		maxUses      uint32
		expiresAfter int64
		roles        string
	)

	return &cli.Command{
		Name:        "member",
		Summary:     "Invite a new member",
		Description: "Post a member invitation naming the invitee's user name up front, per spec §7's soundness invariant.",
		Usage:       "concord invite member [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("invite member", pflag.ContinueOnError)
			flagSet.StringVar(&userName, "user", "", "the inviting member's user name (required)")
			flagSet.StringVar(&deviceName, "device", "primary", "the inviting member's device name")
			flagSet.StringVar(&inviteeName, "invitee", "", "the user name this invitation admits (required)")
			flagSet.StringVar(&seed, "seed", "", "human-chosen invitation secret (empty: generate fresh)")
			flagSet.Uint32Var(&maxUses, "max-uses", 1, "how many times this invitation may be accepted")
			flagSet.Int64Var(&expiresAfter, "expiration", 0, "unix timestamp after which this invitation is invalid (0: never)")
			flagSet.StringVar(&roles, "roles", "", "comma-separated roles granted to the new member")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord invite member [flags] <team-name>")
			}
			if userName == "" || inviteeName == "" {
				return fmt.Errorf("--user and --invitee are required")
			}

			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			result, err := team.InviteMember(core.InviteMemberParams{
				UserName:   inviteeName,
				Seed:       seed,
				MaxUses:    maxUses,
				Expiration: expiresAfter,
				Roles:      splitRoles(roles),
			})
			if err != nil {
				return fmt.Errorf("inviting %q: %w", inviteeName, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}

			fmt.Printf("invitation id:     %s\n", result.InvitationID)
			fmt.Printf("invitation secret: %s\n", result.Secret)
			return nil
		},
	}
}

func inviteDeviceCommand(env *Environment) *cli.Command {
	var (
		userName      string
		deviceName    string
		newDeviceName string
		seed          string
		maxUses       uint32
		expiresAfter  int64
	)

	return &cli.Command{
		Name:        "device",
		Summary:     "Invite one of your own additional devices",
		Description: "Post a device invitation enrolling another device belonging to the caller.",
		Usage:       "concord invite device [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("invite device", pflag.ContinueOnError)
			flagSet.StringVar(&userName, "user", "", "the inviting member's user name (required)")
			flagSet.StringVar(&deviceName, "device", "primary", "the inviting member's existing device name")
			flagSet.StringVar(&newDeviceName, "new-device", "", "name of the device being enrolled, e.g. \"phone\" (required)")
			flagSet.StringVar(&seed, "seed", "", "human-chosen invitation secret (empty: generate fresh)")
			flagSet.Uint32Var(&maxUses, "max-uses", 1, "how many times this invitation may be accepted")
			flagSet.Int64Var(&expiresAfter, "expiration", 0, "unix timestamp after which this invitation is invalid (0: never)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord invite device [flags] <team-name>")
			}
			if userName == "" || newDeviceName == "" {
				return fmt.Errorf("--user and --new-device are required")
			}

			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			result, err := team.InviteDevice(core.InviteDeviceParams{
				DeviceID:   identity.DeviceID(userName, newDeviceName),
				Seed:       seed,
				MaxUses:    maxUses,
				Expiration: expiresAfter,
			})
			if err != nil {
				return fmt.Errorf("inviting device %q: %w", newDeviceName, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}

			fmt.Printf("invitation id:     %s\n", result.InvitationID)
			fmt.Printf("invitation secret: %s\n", result.Secret)
			return nil
		},
	}
}

func splitRoles(roles string) []string {
	if roles == "" {
		return nil
	}
	parts := strings.Split(roles, ",")
	trimmed := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			trimmed = append(trimmed, part)
		}
	}
	return trimmed
}
