// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concord/cmd/concord/cli"
)

// revokeCommand returns the "revoke" command, spec §6's
// `revokeInvitation(id)`. Role revocation is a separate, scoped
// subcommand ("roles revoke") so the two never collide at the top
// level.
func revokeCommand(env *Environment) *cli.Command {
	var (
		userName     string
		deviceName   string
		invitationID string
	)

	return &cli.Command{
		Name:        "revoke",
		Summary:     "Revoke a posted invitation",
		Description: "Revoke a posted invitation so no further proof derived from it can admit anyone.",
		Usage:       "concord revoke [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("revoke", pflag.ContinueOnError)
			flagSet.StringVar(&userName, "user", "", "the calling admin's user name (required)")
			flagSet.StringVar(&deviceName, "device", "primary", "the calling admin's device name")
			flagSet.StringVar(&invitationID, "invitation", "", "the invitation id to revoke (required)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord revoke [flags] <team-name>")
			}
			if userName == "" || invitationID == "" {
				return fmt.Errorf("--user and --invitation are required")
			}

			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			if err := team.RevokeInvitation(invitationID); err != nil {
				return fmt.Errorf("revoking invitation %s: %w", invitationID, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}

			fmt.Printf("revoked invitation %s\n", invitationID)
			return nil
		},
	}
}
