// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concord/cmd/concord/cli"
	"github.com/bureau-foundation/concord/lib/core"
)

// createCommand returns the "create" command, founding a new team
// under the caller's own identity (spec §6's `create(teamName, seed?)`).
func createCommand(env *Environment) *cli.Command {
	var (
		userName   string
		deviceName string
		seed       string
	)

	return &cli.Command{
		Name:        "create",
		Summary:     "Found a new team",
		Description: "Found a new team under the caller's identity, becoming its first admin member.",
		Usage:       "concord create [flags] <team-name>",
		Examples: []cli.Example{
			{Description: "Found team \"acme\" as alice", Command: "concord create --user alice --device laptop acme"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("create", pflag.ContinueOnError)
			flagSet.StringVar(&userName, "user", "", "the founder's user name (required)")
			flagSet.StringVar(&deviceName, "device", "primary", "the founder's device name")
			flagSet.StringVar(&seed, "seed", "", "human-chosen seed the team key derives from (empty: generate fresh)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord create [flags] <team-name>")
			}
			if userName == "" {
				return fmt.Errorf("--user is required")
			}
			teamName := args[0]

			device, err := env.device(userName, deviceName)
			if err != nil {
				return err
			}
			store, err := env.teamStore(teamName)
			if err != nil {
				return err
			}

			team, err := core.Create(core.CreateParams{
				TeamName: teamName,
				Device:   device,
				Seed:     seed,
				Store:    store,
				Logger:   env.Logger,
			})
			if err != nil {
				return fmt.Errorf("founding team %q: %w", teamName, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}

			fmt.Printf("founded team %q as %s/%s\n", teamName, userName, device.ID)
			return nil
		},
	}
}
