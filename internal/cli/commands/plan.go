// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

// Feature: CLI_PLAN
// Spec: spec/commands/plan.md

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cmatsuoka/partbuilder/internal/lifecycle"
	"github.com/cmatsuoka/partbuilder/internal/step"
	"github.com/cmatsuoka/partbuilder/pkg/config"
)

// NewPlanCommand returns the `partbuilder plan [step] [part...]` command: it
// computes and renders the action plan from the state loaded through the
// persistent adapter, without saving any state or invoking the executor.
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [step] [part...]",
		Short: "Show the action plan for a target step without running it",
		Long: `Computes the ordered list of actions that would bring the given target
step (pull, build, stage, or prime; default prime) to completion across all
parts, or just the named ones, and prints it without executing anything.`,
		RunE: runPlan,
	}

	cmd.Flags().String("format", "text", "output format: text, json, or table")
	cmd.Flags().Bool("no-color", false, "disable colorized action verbs in text output")

	return cmd
}

func runPlan(cmd *cobra.Command, args []string) error {
	rc, err := Resolve(cmd)
	if err != nil {
		return fmt.Errorf("resolving configuration: %w", err)
	}
	if rc.Doc == nil {
		return fmt.Errorf("no parts document found (pass --config or create %s)", config.DefaultConfigPath())
	}

	target, selected := parseStepArgs(args)

	adapter, err := buildAdapter(cmd.Context(), rc.Options)
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
	})
	if err != nil {
		return err
	}

	plan, err := m.Actions(target, selected)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	noColor, _ := cmd.Flags().GetBool("no-color")

	return renderPlan(cmd.OutOrStdout(), plan, format, !noColor)
}

// parseStepArgs splits a [step [part...]] argument list the way
// original_source/example.py's argv handling does: the first token, if
// present, names the target step (unrecognized names fall back to prime
// via step.ParseStep); everything after it selects specific parts.
func parseStepArgs(args []string) (step.Step, []string) {
	if len(args) == 0 {
		return step.Prime, nil
	}
	return step.ParseStep(args[0]), args[1:]
}
