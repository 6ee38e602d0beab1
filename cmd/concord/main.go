// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command concord is the team authentication/authorization CLI: found
// a team, invite and admit members and devices, and manage roles, all
// backed by the host-facing API in lib/core.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/concord/cmd/concord/commands"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root, err := commands.Root()
	if err != nil {
		return err
	}
	return root.Execute(os.Args[1:])
}
