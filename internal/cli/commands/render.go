// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/cmatsuoka/partbuilder/internal/step"
)

// Feature: CLI_PLAN
// Spec: spec/commands/plan.md

var (
	colorFresh = color.New(color.FgGreen)
	colorRerun = color.New(color.FgYellow)
	colorSkip  = color.New(color.FgHiBlack)
)

// actionColor returns the color.SprintfFunc for a planned action: green
// for a fresh run, yellow for a re-run or update, dimmed for a skip.
func actionColor(a step.Action) func(format string, a ...interface{}) string {
	switch {
	case a.IsSkip():
		return colorSkip.Sprintf
	case a == step.ActionPull || a == step.ActionBuild || a == step.ActionStage || a == step.ActionPrime:
		return colorFresh.Sprintf
	default:
		return colorRerun.Sprintf
	}
}

// actionMessage renders one planned action the way
// original_source/example.py's msg() formats it: "{verb} {part}", with a
// "(because {reason})" clause appended whenever the sequencer recorded one.
func actionMessage(a step.PartAction, colorize bool) string {
	line := fmt.Sprintf("%s %s", a.Action.Verb(), a.PartName)
	if a.Reason != "" {
		line = fmt.Sprintf("%s (because %s)", line, a.Reason)
	}
	if !colorize {
		return line
	}
	return actionColor(a.Action)("%s", line)
}

// renderPlan writes plan in the requested format: "text" (default), "json",
// or "table".
func renderPlan(out io.Writer, plan []step.PartAction, format string, colorize bool) error {
	switch format {
	case "", "text":
		return renderPlanText(out, plan, colorize)
	case "json":
		return renderPlanJSON(out, plan)
	case "table":
		return renderPlanTable(out, plan)
	default:
		return fmt.Errorf("invalid format %q (want text, json, or table)", format)
	}
}

func renderPlanText(out io.Writer, plan []step.PartAction, colorize bool) error {
	if len(plan) == 0 {
		_, err := fmt.Fprintln(out, "Nothing to do.")
		return err
	}
	for _, a := range plan {
		if _, err := fmt.Fprintln(out, actionMessage(a, colorize)); err != nil {
			return err
		}
	}
	return nil
}

type jsonAction struct {
	Part   string `json:"part"`
	Step   string `json:"step"`
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

func renderPlanJSON(out io.Writer, plan []step.PartAction) error {
	actions := make([]jsonAction, 0, len(plan))
	for _, a := range plan {
		actions = append(actions, jsonAction{
			Part:   a.PartName,
			Step:   a.Step.String(),
			Action: a.Action.String(),
			Reason: a.Reason,
		})
	}
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(actions)
}

func renderPlanTable(out io.Writer, plan []step.PartAction) error {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Part", "Step", "Action", "Reason"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, a := range plan {
		table.Append([]string{a.PartName, a.Step.String(), a.Action.String(), a.Reason})
	}

	table.Render()
	return nil
}
