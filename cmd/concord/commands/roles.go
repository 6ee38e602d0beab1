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

// rolesCommand returns the "roles" command tree, spec §6's
// `addRole`/`removeRole`/`addMemberRole`/`removeMemberRole`.
func rolesCommand(env *Environment) *cli.Command {
	return &cli.Command{
		Name:    "roles",
		Summary: "Manage team roles and role assignments",
		Subcommands: []*cli.Command{
			rolesListCommand(env),
			rolesAddCommand(env),
			rolesRemoveCommand(env),
			rolesGrantCommand(env),
			rolesRevokeCommand(env),
		},
	}
}

func callerFlags(flagSet *pflag.FlagSet, userName, deviceName *string) {
	flagSet.StringVar(userName, "user", "", "the caller's user name (required)")
	flagSet.StringVar(deviceName, "device", "primary", "the caller's device name")
}

func rolesListCommand(env *Environment) *cli.Command {
	var userName, deviceName string
	return &cli.Command{
		Name:        "list",
		Summary:     "List team roles",
		Description: "List every role defined on the team and its permissions.",
		Usage:       "concord roles list [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("roles list", pflag.ContinueOnError)
			callerFlags(flagSet, &userName, &deviceName)
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord roles list [flags] <team-name>")
			}
			if userName == "" {
				return fmt.Errorf("--user is required")
			}
			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			roles := team.Roles()
			sort.Slice(roles, func(i, j int) bool { return roles[i].RoleName < roles[j].RoleName })

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "ROLE\tPERMISSIONS\n")
			for _, role := range roles {
				perms := make([]string, 0, len(role.Permissions))
				for perm := range role.Permissions {
					perms = append(perms, perm)
				}
				sort.Strings(perms)
				fmt.Fprintf(tw, "%s\t%s\n", role.RoleName, joinOrDash(perms))
			}
			return tw.Flush()
		},
	}
}

func rolesAddCommand(env *Environment) *cli.Command {
	var userName, deviceName, roleName string
	return &cli.Command{
		Name:        "add",
		Summary:     "Define a new role",
		Description: "Define a new role on the team. No role keyset is minted or sealed for it.",
		Usage:       "concord roles add [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("roles add", pflag.ContinueOnError)
			callerFlags(flagSet, &userName, &deviceName)
			flagSet.StringVar(&roleName, "role", "", "the role name to define (required)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord roles add [flags] <team-name>")
			}
			if userName == "" || roleName == "" {
				return fmt.Errorf("--user and --role are required")
			}
			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			if err := team.AddRole(roleName); err != nil {
				return fmt.Errorf("adding role %q: %w", roleName, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}
			fmt.Printf("added role %q\n", roleName)
			return nil
		},
	}
}

func rolesRemoveCommand(env *Environment) *cli.Command {
	var userName, deviceName, roleName string
	return &cli.Command{
		Name:        "remove",
		Summary:     "Remove a role definition",
		Description: "Remove a role from the team. Refused while any member still holds the role.",
		Usage:       "concord roles remove [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("roles remove", pflag.ContinueOnError)
			callerFlags(flagSet, &userName, &deviceName)
			flagSet.StringVar(&roleName, "role", "", "the role name to remove (required)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord roles remove [flags] <team-name>")
			}
			if userName == "" || roleName == "" {
				return fmt.Errorf("--user and --role are required")
			}
			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			if err := team.RemoveRole(roleName); err != nil {
				return fmt.Errorf("removing role %q: %w", roleName, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}
			fmt.Printf("removed role %q\n", roleName)
			return nil
		},
	}
}

func rolesGrantCommand(env *Environment) *cli.Command {
	var userName, deviceName, roleName, target string
	return &cli.Command{
		Name:        "grant",
		Summary:     "Grant a role to a member",
		Description: "Grant an existing role to a member, sealing the role key to them.",
		Usage:       "concord roles grant [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("roles grant", pflag.ContinueOnError)
			callerFlags(flagSet, &userName, &deviceName)
			flagSet.StringVar(&roleName, "role", "", "the role name to grant (required)")
			flagSet.StringVar(&target, "member", "", "the member to grant it to (required)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord roles grant [flags] <team-name>")
			}
			if userName == "" || roleName == "" || target == "" {
				return fmt.Errorf("--user, --role, and --member are required")
			}
			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			if err := team.AddMemberRole(target, roleName); err != nil {
				return fmt.Errorf("granting role %q to %q: %w", roleName, target, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}
			fmt.Printf("granted %q to %s\n", roleName, target)
			return nil
		},
	}
}

func rolesRevokeCommand(env *Environment) *cli.Command {
	var userName, deviceName, roleName, target string
	return &cli.Command{
		Name:        "revoke",
		Summary:     "Revoke a role from a member",
		Description: "Revoke a role from a member. The role key is not rotated.",
		Usage:       "concord roles revoke [flags] <team-name>",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("roles revoke", pflag.ContinueOnError)
			callerFlags(flagSet, &userName, &deviceName)
			flagSet.StringVar(&roleName, "role", "", "the role name to revoke (required)")
			flagSet.StringVar(&target, "member", "", "the member to revoke it from (required)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: concord roles revoke [flags] <team-name>")
			}
			if userName == "" || roleName == "" || target == "" {
				return fmt.Errorf("--user, --role, and --member are required")
			}
			team, device, err := env.openTeam(args[0], userName, deviceName)
			if err != nil {
				return err
			}
			defer device.Close()

			if err := team.RemoveMemberRole(target, roleName); err != nil {
				return fmt.Errorf("revoking role %q from %q: %w", roleName, target, err)
			}
			if err := saveTeam(team); err != nil {
				return err
			}
			fmt.Printf("revoked %q from %s\n", roleName, target)
			return nil
		},
	}
}
