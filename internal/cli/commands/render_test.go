// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmatsuoka/partbuilder/internal/step"
)

func samplePlan() []step.PartAction {
	return []step.PartAction{
		{PartName: "foo", Action: step.ActionPull, Step: step.Pull},
		{PartName: "bar", Action: step.ActionSkipBuild, Step: step.Build, Reason: "clean"},
	}
}

func TestRenderPlanText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPlan(&buf, samplePlan(), "text", false))

	out := buf.String()
	assert.Contains(t, out, "Pulling foo")
	assert.Contains(t, out, "Skipping bar (because clean)")
}

func TestRenderPlanTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPlan(&buf, nil, "text", false))
	assert.Equal(t, "Nothing to do.\n", buf.String())
}

func TestRenderPlanJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPlan(&buf, samplePlan(), "json", false))

	out := buf.String()
	assert.True(t, strings.Contains(out, `"part": "foo"`))
	assert.True(t, strings.Contains(out, `"action": "SKIP_BUILD"`))
}

func TestRenderPlanTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPlan(&buf, samplePlan(), "table", false))
	assert.Contains(t, buf.String(), "foo")
}

func TestRenderPlanInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	err := renderPlan(&buf, samplePlan(), "xml", false)
	assert.Error(t, err)
}
