// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

// NewStateCommand returns the `partbuilder state` debug command group:
// show|set a single field of a raw on-disk state file, without a full
// unmarshal/marshal round trip, for diagnosing why a step is considered
// dirty or outdated.
func NewStateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or patch a single part's on-disk state file",
	}

	cmd.AddCommand(newStateShowCommand())
	cmd.AddCommand(newStateSetCommand())

	return cmd
}

func newStateShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <part> <step> [path]",
		Short: "Print a state file, or one field of it if path is given",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return fmt.Errorf("resolving configuration: %w", err)
			}

			raw, err := readStateFile(rc.Options.WorkDir, args[0], args[1])
			if err != nil {
				return err
			}

			if len(args) == 3 {
				result := gjson.GetBytes(raw, args[2])
				if !result.Exists() {
					return fmt.Errorf("path %q not found in state file", args[2])
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.String())
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		},
	}
}

func newStateSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <part> <step> <path> <value>",
		Short: "Patch one field of a state file in place",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := Resolve(cmd)
			if err != nil {
				return fmt.Errorf("resolving configuration: %w", err)
			}

			partName, stepName, path, value := args[0], args[1], args[2], args[3]

			raw, err := readStateFile(rc.Options.WorkDir, partName, stepName)
			if err != nil {
				return err
			}

			patched, err := sjson.SetRawBytes(raw, path, []byte(jsonLiteral(value)))
			if err != nil {
				return fmt.Errorf("patching %q: %w", path, err)
			}

			return writeStateFile(rc.Options.WorkDir, partName, stepName, patched)
		},
	}
}

// jsonLiteral turns a raw CLI value into the JSON literal sjson should
// splice in: numbers, booleans, and "null" pass through unquoted so
// `state set foo pull timestamp 99` lands as the number 99 rather than the
// string "99"; everything else is quoted as a JSON string.
func jsonLiteral(value string) string {
	if value == "null" || value == "true" || value == "false" {
		return value
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return value
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}
	quoted, err := json.Marshal(value)
	if err != nil {
		return `""`
	}
	return string(quoted)
}

func statePath(workDir, partName, stepName string) string {
	p := part.New(partName, nil, workDir)
	return filepath.Join(p.StateDir, step.ParseStep(stepName).String())
}

func readStateFile(workDir, partName, stepName string) ([]byte, error) {
	path := statePath(workDir, partName, stepName)
	// nolint:gosec // G304: reading a state file named by the part/step the operator asked for is expected behavior
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading state file %s: %w", path, err)
	}
	return raw, nil
}

func writeStateFile(workDir, partName, stepName string, data []byte) error {
	path := statePath(workDir, partName, stepName)
	return os.WriteFile(path, data, 0o644)
}
