package statemgr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

type memAdapter struct {
	data map[string]map[step.Step]state.PartState
}

func newMemAdapter() *memAdapter {
	return &memAdapter{data: map[string]map[step.Step]state.PartState{}}
}

func (a *memAdapter) Load(partName string, s step.Step) (state.PartState, error) {
	return a.data[partName][s], nil
}

func (a *memAdapter) Save(partName string, s step.Step, st state.PartState) error {
	if a.data[partName] == nil {
		a.data[partName] = map[step.Step]state.PartState{}
	}
	a.data[partName][s] = st
	return nil
}

func newManager(t *testing.T, parts []part.Part, adapter *memAdapter) *Manager {
	t.Helper()
	set, err := part.NewSet(parts)
	require.NoError(t, err)
	m, err := New(set, adapter, nil, nil)
	require.NoError(t, err)
	return m
}

func TestHasStepRunLatestStepSemantics(t *testing.T) {
	adapter := newMemAdapter()
	require.NoError(t, adapter.Save("foo", step.Pull, state.PartState{Timestamp: 1}))
	require.NoError(t, adapter.Save("foo", step.Build, state.PartState{Timestamp: 2}))

	m := newManager(t, []part.Part{part.New("foo", nil, "")}, adapter)

	assert.True(t, m.HasStepRun("foo", step.Pull))
	assert.True(t, m.HasStepRun("foo", step.Build))
	assert.False(t, m.HasStepRun("foo", step.Stage))
	assert.False(t, m.HasStepRun("foo", step.Prime))
}

func TestAddStepRunMarksRun(t *testing.T) {
	adapter := newMemAdapter()
	m := newManager(t, []part.Part{part.New("foo", nil, "")}, adapter)

	assert.False(t, m.HasStepRun("foo", step.Pull))
	m.AddStepRun("foo", step.Pull)
	assert.True(t, m.HasStepRun("foo", step.Pull))
}

func TestShouldStepRunNeverRun(t *testing.T) {
	adapter := newMemAdapter()
	m := newManager(t, []part.Part{part.New("foo", nil, "")}, adapter)

	should, err := m.ShouldStepRun("foo", step.Prime)
	require.NoError(t, err)
	assert.True(t, should)
}

func TestShouldStepRunAllStepsCleanFalse(t *testing.T) {
	adapter := newMemAdapter()
	for _, s := range step.All {
		require.NoError(t, adapter.Save("foo", s, state.PartState{Timestamp: 1}))
	}
	m := newManager(t, []part.Part{part.New("foo", nil, "")}, adapter)

	should, err := m.ShouldStepRun("foo", step.Prime)
	require.NoError(t, err)
	assert.False(t, should)
}

func TestDirtyReportCascadesFromDependency(t *testing.T) {
	adapter := newMemAdapter()
	// foo is dependency of bar (bar after foo)
	for _, s := range step.All {
		require.NoError(t, adapter.Save("foo", s, state.PartState{Timestamp: 100}))
		require.NoError(t, adapter.Save("bar", s, state.PartState{Timestamp: 1}))
	}

	parts := []part.Part{
		part.New("foo", nil, ""),
		part.New("bar", map[string]any{"after": []string{"foo"}}, ""),
	}
	m := newManager(t, parts, adapter)

	report, err := m.DirtyReport("bar", step.Pull)
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Len(t, report.ChangedDependencies, 1)
	assert.Equal(t, "foo", report.ChangedDependencies[0].PartName)
	assert.Equal(t, step.Stage, report.ChangedDependencies[0].Step)
}

func TestCleanPartRemovesStepAndLater(t *testing.T) {
	adapter := newMemAdapter()
	for _, s := range step.All {
		require.NoError(t, adapter.Save("foo", s, state.PartState{Timestamp: 1}))
	}
	m := newManager(t, []part.Part{part.New("foo", nil, "")}, adapter)

	m.CleanPart("foo", step.Build)

	assert.True(t, m.HasStepRun("foo", step.Pull))
	assert.False(t, m.HasStepRun("foo", step.Build))
	assert.False(t, m.HasStepRun("foo", step.Stage))
	assert.False(t, m.HasStepRun("foo", step.Prime))
}

func TestEverRanSnapshotSurvivesCleanPart(t *testing.T) {
	adapter := newMemAdapter()
	for _, s := range step.All {
		require.NoError(t, adapter.Save("foo", s, state.PartState{Timestamp: 1}))
	}
	m := newManager(t, []part.Part{part.New("foo", nil, "")}, adapter)

	require.True(t, m.EverRan("foo", step.Build))

	m.CleanPart("foo", step.Pull)
	m.ClearStep("foo", step.Pull)

	assert.False(t, m.HasStepRun("foo", step.Build), "CleanPart(Pull) wipes every later step too")
	assert.True(t, m.EverRan("foo", step.Build), "the snapshot is unaffected by later mutation")
}

func TestClearStepForcesRecompute(t *testing.T) {
	adapter := newMemAdapter()
	require.NoError(t, adapter.Save("foo", step.Pull, state.PartState{Timestamp: 1}))
	m := newManager(t, []part.Part{part.New("foo", nil, "")}, adapter)

	assert.True(t, m.HasStepRun("foo", step.Pull))
	m.CleanPart("foo", step.Pull)
	m.ClearStep("foo", step.Pull)
	assert.False(t, m.HasStepRun("foo", step.Pull))
}
