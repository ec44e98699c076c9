// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/state/statefile"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

func TestStateShowAndSetRoundTrip(t *testing.T) {
	workDir := t.TempDir()
	adapter := statefile.New(workDir)
	require.NoError(t, adapter.Save("foo", step.Pull, state.PartState{
		Timestamp:            42,
		PropertiesOfInterest: map[string]any{"source": "git"},
	}))

	showCmd := NewStateCommand()
	var buf bytes.Buffer
	showCmd.SetOut(&buf)
	showCmd.SetArgs([]string{"show", "--work-dir", workDir, "foo", "pull", "timestamp"})
	RegisterPersistentFlags(showCmd)
	require.NoError(t, showCmd.Execute())
	assert.Equal(t, "42\n", buf.String())

	setCmd := NewStateCommand()
	setCmd.SetArgs([]string{"set", "--work-dir", workDir, "foo", "pull", "timestamp", "99"})
	RegisterPersistentFlags(setCmd)
	require.NoError(t, setCmd.Execute())

	st, err := adapter.Load("foo", step.Pull)
	require.NoError(t, err)
	assert.Equal(t, int64(99), st.Timestamp)
}
