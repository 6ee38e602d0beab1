// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import "github.com/bureau-foundation/concord/cmd/concord/cli"

// Root builds the concord CLI's full command tree, wiring each
// subcommand factory against a freshly loaded [Environment].
func Root() (*cli.Command, error) {
	env, err := NewEnvironment()
	if err != nil {
		return nil, err
	}

	return &cli.Command{
		Name:        "concord",
		Summary:     "Decentralized team authentication and authorization",
		Description: "concord manages a team's signature graph, membership, roles, and invitations from the command line.",
		Subcommands: []*cli.Command{
			createCommand(env),
			inviteCommand(env),
			admitCommand(env),
			membersCommand(env),
			rolesCommand(env),
			revokeCommand(env),
		},
	}, nil
}
