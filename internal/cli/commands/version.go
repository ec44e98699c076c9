// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package commands

import (
	"fmt"

	figure "github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

// NewVersionCommand returns the `partbuilder version` command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the partbuilder version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, figure.NewFigure("partbuilder", "", true).String())
			fmt.Fprintf(out, "version %s\n", version)
		},
	}
}
