// Package executor implements the stub executor: it does not fetch
// sources, compile, or stage real files. Each action touches a marker
// file under the part's state directory; PRIME additionally archives the
// part's install directory, giving the stub one deterministic artifact.
package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mholt/archiver/v3"

	"github.com/cmatsuoka/partbuilder/internal/lifecycle"
	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/step"
	"github.com/cmatsuoka/partbuilder/pkg/logging"
)

// MarkerExecutor touches one marker file per completed step and archives
// install directories on PRIME. It satisfies lifecycle.Executor.
type MarkerExecutor struct {
	Logger logging.Logger
}

// NewMarkerExecutor builds a MarkerExecutor, defaulting to a quiet logger
// when log is nil.
func NewMarkerExecutor(log logging.Logger) *MarkerExecutor {
	if log == nil {
		log = logging.NewLogger(false)
	}
	return &MarkerExecutor{Logger: log}
}

// RunAction performs the side effect for one planned action. Skip
// actions are logged only; every other action writes a marker and, for
// PRIME, archives Part.InstallDir into Part.PartDir/prime.tar.gz.
func (e *MarkerExecutor) RunAction(ctx context.Context, action step.PartAction, p part.Part, info lifecycle.StepInfo) error {
	fields := []logging.Field{
		logging.NewField("part", p.Name),
		logging.NewField("step", action.Step.String()),
		logging.NewField("action", action.Action.String()),
	}
	if action.Reason != "" {
		fields = append(fields, logging.NewField("reason", action.Reason))
	}

	if action.Action.IsSkip() {
		e.Logger.Debug("skip", fields...)
		return nil
	}

	e.Logger.Info(action.Action.Verb(), fields...)

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := dirForStep(p, action.Step)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	marker := filepath.Join(p.StateDir, action.Step.String()+".marker")
	if err := os.MkdirAll(p.StateDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", p.StateDir, err)
	}
	content := fmt.Sprintf("%s %s at %s (%s)\n", action.Action, p.Name, time.Now().Format(time.RFC3339), action.Reason)
	if err := os.WriteFile(marker, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing marker %s: %w", marker, err)
	}

	if action.Step == step.Prime {
		return e.archiveInstallDir(p)
	}

	return nil
}

// dirForStep returns the working directory an action's marker should be
// considered to have populated, for readability only: the executor never
// actually builds or stages anything.
func dirForStep(p part.Part, s step.Step) string {
	switch s {
	case step.Pull:
		return p.SrcDir
	case step.Build:
		return p.BuildDir
	case step.Stage, step.Prime:
		return p.InstallDir
	default:
		return p.PartDir
	}
}

// archiveInstallDir packages p.InstallDir into p.PartDir/prime.tar.gz,
// creating an empty install directory first if none was ever populated
// (the stub never stages real files).
func (e *MarkerExecutor) archiveInstallDir(p part.Part) error {
	if err := os.MkdirAll(p.InstallDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", p.InstallDir, err)
	}

	dest := filepath.Join(p.PartDir, "prime.tar.gz")
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale %s: %w", dest, err)
	}

	if err := archiver.Archive([]string{p.InstallDir}, dest); err != nil {
		return fmt.Errorf("archiving %s: %w", p.InstallDir, err)
	}

	return nil
}
