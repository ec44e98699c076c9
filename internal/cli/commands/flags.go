// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

// Feature: CLI_GLOBAL_FLAGS
// Spec: spec/core/global-flags.md

package commands

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cmatsuoka/partbuilder/pkg/config"
)

// RegisterPersistentFlags attaches the flags every partbuilder subcommand
// shares to cmd, in lexicographic order for deterministic help output.
func RegisterPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP("config", "c", "", "path to the parts document (default partbuilder.yml)")
	cmd.PersistentFlags().String("local-plugins-dir", "", "plugin search path")
	cmd.PersistentFlags().String("log-file", "", "rotate structured logs to this file in addition to stdout/stderr")
	cmd.PersistentFlags().Int("parallel-build-count", 0, "parallelism hint forwarded to the executor")
	cmd.PersistentFlags().String("platform-id", "", "opaque platform tag forwarded to the executor")
	cmd.PersistentFlags().String("platform-version-id", "", "opaque platform version tag forwarded to the executor")
	cmd.PersistentFlags().String("state-backend", "", "persistent state backend: file (default) or postgres")
	cmd.PersistentFlags().String("target-arch", "", "cross-compilation target architecture; empty means host")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug-level logging")
	cmd.PersistentFlags().String("work-dir", "", "base directory for per-part subdirectories")
}

// ResolvedConfig is the result of loading the parts document (if present)
// and merging it with the CLI flags on cmd, following the flag > document >
// built-in default precedence documented in pkg/config.Resolve.
type ResolvedConfig struct {
	Doc     *config.Document
	Options config.Options
	Verbose bool
	LogFile string
}

// Resolve loads the parts document named by --config (or its default path)
// and merges it with the flags set on cmd. A missing document is not an
// error here: commands that need one (plan, the root execute command)
// check Doc == nil themselves and report accordingly, while commands that
// don't (state show|set) can still resolve scalar options.
func Resolve(cmd *cobra.Command) (*ResolvedConfig, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = os.Getenv("PARTBUILDER_CONFIG")
	}
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}

	doc, err := config.Load(configPath)
	if err != nil {
		if err != config.ErrConfigNotFound {
			return nil, err
		}
		doc = nil
	}

	overrides := config.Options{}
	if v, _ := cmd.Flags().GetString("work-dir"); v != "" {
		overrides.WorkDir = v
	}
	if v, _ := cmd.Flags().GetString("target-arch"); v != "" {
		overrides.TargetArch = v
	}
	if v, _ := cmd.Flags().GetString("platform-id"); v != "" {
		overrides.PlatformID = v
	}
	if v, _ := cmd.Flags().GetString("platform-version-id"); v != "" {
		overrides.PlatformVersionID = v
	}
	if v, _ := cmd.Flags().GetInt("parallel-build-count"); v != 0 {
		overrides.ParallelBuildCount = v
	}
	if v, _ := cmd.Flags().GetString("local-plugins-dir"); v != "" {
		overrides.LocalPluginsDir = v
	}
	if v, _ := cmd.Flags().GetString("state-backend"); v != "" {
		overrides.StateBackend = v
	}

	resolved, err := config.Resolve(doc, overrides)
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if !verbose {
		verbose = parseBoolEnv(os.Getenv("PARTBUILDER_VERBOSE"))
	}

	logFile, _ := cmd.Flags().GetString("log-file")

	return &ResolvedConfig{Doc: doc, Options: resolved, Verbose: verbose, LogFile: logFile}, nil
}

func parseBoolEnv(value string) bool {
	if value == "" {
		return false
	}
	parsed, err := strconv.ParseBool(value)
	return err == nil && parsed
}
