// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/concord/cmd/concord/cli"
)

// membersCommand returns the "members" command tree: "members list"
// and "members remove", spec §6's `members()`/`remove(userName)`.
func membersCommand(env *Environment) *cli.Command {
	return &cli.Command{
		Name:    "members",
		Summary: "List or remove team members",
		Subcommands: []*cli.Command{
			membersListCommand(env),
			membersRemoveCommand(env),
		},
	}
}

func membersListCommand(env *Environment) *cli.Command {
	var (
		userName   string
		deviceName string
	)

	return &cli.Command{
		Name:        "list",
		Summary:     "List team members",
		Description: "List every current member, their roles, and their enrolled device count.",
		Usage:       "concord members list [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("members list", pflag.ContinueOnError)
			flagSet.StringVar(&userName, "user", "", "the caller's user name (required)")
			flagSet.StringVar(&deviceName, "device", "primary", "the caller's device name")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord members list [flags] <team-name>")
			}
			if userName == "" {
				return fmt.Errorf("--user is required")
			}

			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			members := team.Members()
			sort.Slice(members, func(i, j int) bool { return members[i].UserName < members[j].UserName })

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "USER\tADMIN\tROLES\tDEVICES\n")
			for _, member := range members {
				roleNames := make([]string, 0, len(member.Roles))
				for role := range member.Roles {
					roleNames = append(roleNames, role)
				}
				sort.Strings(roleNames)
				fmt.Fprintf(tw, "%s\t%v\t%s\t%d\n", member.UserName, team.MemberIsAdmin(member.UserName), joinOrDash(roleNames), len(member.Devices))
			}
			return tw.Flush()
		},
	}
}

func membersRemoveCommand(env *Environment) *cli.Command {
	var (
		userName   string
		deviceName string
		target     string
	)

	return &cli.Command{
		Name:        "remove",
		Summary:     "Remove a member",
		Description: "Remove a member from the team, rotating the team and role keys they held away from.",
		Usage:       "concord members remove [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("members remove", pflag.ContinueOnError)
			flagSet.StringVar(&userName, "user", "", "the calling admin's user name (required)")
			flagSet.StringVar(&deviceName, "device", "primary", "the calling admin's device name")
			flagSet.StringVar(&target, "member", "", "the user name to remove (required)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord members remove [flags] <team-name>")
			}
			if userName == "" || target == "" {
				return fmt.Errorf("--user and --member are required")
			}

			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			if err := team.Remove(target); err != nil {
				return fmt.Errorf("removing %q: %w", target, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}

			fmt.Printf("removed %s\n", target)
			return nil
		},
	}
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	result := items[0]
	for _, item := range items[1:] {
		result += "," + item
	}
	return result
}
