// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package main

import (
	"fmt"
	"os"

	"github.com/cmatsuoka/partbuilder/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Centralize error printing here since the root command sets
		// SilenceErrors to avoid cobra's double-printed usage/error output.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
