package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmatsuoka/partbuilder/internal/lifecycle"
	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

func TestRunActionSkipDoesNotTouchFilesystem(t *testing.T) {
	tmp := t.TempDir()
	p := part.New("foo", nil, tmp)
	exec := NewMarkerExecutor(nil)

	action := step.PartAction{PartName: "foo", Action: step.ActionSkipPull, Step: step.Pull}
	require.NoError(t, exec.RunAction(context.Background(), action, p, lifecycle.StepInfo{}))

	_, err := os.Stat(p.StateDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunActionFreshWritesMarker(t *testing.T) {
	tmp := t.TempDir()
	p := part.New("foo", nil, tmp)
	exec := NewMarkerExecutor(nil)

	action := step.PartAction{PartName: "foo", Action: step.ActionPull, Step: step.Pull, Reason: ""}
	require.NoError(t, exec.RunAction(context.Background(), action, p, lifecycle.StepInfo{}))

	marker := filepath.Join(p.StateDir, "pull.marker")
	content, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Contains(t, string(content), "foo")
}

func TestRunActionPrimeArchivesInstallDir(t *testing.T) {
	tmp := t.TempDir()
	p := part.New("foo", nil, tmp)
	require.NoError(t, os.MkdirAll(p.InstallDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(p.InstallDir, "payload.txt"), []byte("hi"), 0o644))

	exec := NewMarkerExecutor(nil)
	action := step.PartAction{PartName: "foo", Action: step.ActionPrime, Step: step.Prime}
	require.NoError(t, exec.RunAction(context.Background(), action, p, lifecycle.StepInfo{}))

	archivePath := filepath.Join(p.PartDir, "prime.tar.gz")
	info, err := os.Stat(archivePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
