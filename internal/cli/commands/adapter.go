// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/state/statefile"
	"github.com/cmatsuoka/partbuilder/internal/state/statepg"
	"github.com/cmatsuoka/partbuilder/pkg/config"
	"github.com/cmatsuoka/partbuilder/pkg/logging"
)

// buildAdapter selects the persistent state adapter named by
// opts.StateBackend. "file" (the default) needs nothing further; "postgres"
// reads its connection string from PARTBUILDER_POSTGRES_DSN and passes it
// to statepg.Open.
func buildAdapter(ctx context.Context, opts config.Options) (state.Adapter, error) {
	switch opts.StateBackend {
	case "", "file":
		return statefile.New(opts.WorkDir), nil
	case "postgres":
		dsn := os.Getenv("PARTBUILDER_POSTGRES_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("state-backend postgres requires PARTBUILDER_POSTGRES_DSN to be set")
		}
		return statepg.Open(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown state-backend %q (want file or postgres)", opts.StateBackend)
	}
}

// buildLogger constructs the logger for a command invocation, routing to
// the rotating file sink in addition to stdout/stderr when --log-file is set.
func buildLogger(rc *ResolvedConfig) logging.Logger {
	if rc.LogFile != "" {
		return logging.NewFileLogger(rc.Verbose, rc.LogFile)
	}
	return logging.NewLogger(rc.Verbose)
}
