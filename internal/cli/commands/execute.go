// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmatsuoka/partbuilder/internal/executor"
	"github.com/cmatsuoka/partbuilder/internal/lifecycle"
	"github.com/cmatsuoka/partbuilder/pkg/config"
	"github.com/cmatsuoka/partbuilder/pkg/logging"
)

// RunExecute is the root command's RunE: `partbuilder [step] [part...]`
// plans and then runs to completion, in contrast to `partbuilder plan`
// which only plans. It is exported so internal/cli/root.go can wire it as
// the root command's own action without a RunE-shaped forwarding command.
func RunExecute(cmd *cobra.Command, args []string) error {
	rc, err := Resolve(cmd)
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}
	if rc.Doc == nil {
		return fmt.Errorf("no parts document found (pass --config or create %s)", config.DefaultConfigPath())
	}

	logger := buildLogger(rc)
	target, selected := parseStepArgs(args)

	ctx := cmd.Context()
	adapter, err := buildAdapter(ctx, rc.Options)
	if err != nil {
		return fmt.Errorf("building state adapter: %w", err)
	}

	m, err := lifecycle.NewManager(lifecycle.Options{
		PartsData:          rc.Doc.Parts,
		BuildPackages:      rc.Options.BuildPackages,
		WorkDir:            rc.Options.WorkDir,
		TargetArch:         rc.Options.TargetArch,
		PlatformID:         rc.Options.PlatformID,
		PlatformVersionID:  rc.Options.PlatformVersionID,
		ParallelBuildCount: rc.Options.ParallelBuildCount,
		LocalPluginsDir:    rc.Options.LocalPluginsDir,
		Adapter:            adapter,
		Executor:           executor.NewMarkerExecutor(logger),
	})
	if err != nil {
		return err
	}

	plan, err := m.Actions(target, selected)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, a := range plan {
		fmt.Fprintln(out, actionMessage(a, true))
	}

	report := m.Execute(ctx, plan)
	if report.Err != nil {
		logger.Error("execution failed",
			logging.NewField("part", report.Failed.PartName),
			logging.NewField("step", report.Failed.Step.String()),
			logging.NewField("error", report.Err.Error()),
		)
		return report.Err
	}

	logger.Info("execution completed", logging.NewField("actions", len(report.Completed)))
	return nil
}
