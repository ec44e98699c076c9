// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

// Package cli wires together the partbuilder root Cobra command and its
// subcommands.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cmatsuoka/partbuilder/internal/cli/commands"
)

// NewRootCommand constructs the partbuilder root Cobra command.
//
// Feature: ARCH_OVERVIEW
// Spec: spec/overview.md
func NewRootCommand() *cobra.Command {
	version := os.Getenv("PARTBUILDER_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:   "partbuilder [step] [part...]",
		Short: "partbuilder – a parts lifecycle engine",
		Long: `partbuilder plans and runs PULL/BUILD/STAGE/PRIME actions across a
dependency graph of named parts, skipping steps whose results remain valid
and re-running or updating steps whose inputs changed.

Given no arguments, it plans and executes up to PRIME for every part. The
first positional argument, if given, names the target step (pull, build,
stage, or prime); any remaining arguments select specific parts (their
dependencies still run, to satisfy the target step).`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          commands.RunExecute,
	}

	commands.RegisterPersistentFlags(cmd)

	// Subcommand registrations are kept in lexicographic order by .Use for
	// deterministic help output.
	cmd.AddCommand(commands.NewPlanCommand())
	cmd.AddCommand(commands.NewStateCommand())
	cmd.AddCommand(commands.NewVersionCommand(version))

	return cmd
}
