// Package statemgr wraps the ephemeral state store with the
// memoization a single sequencer pass relies on: has_step_run,
// dirty_report, and outdated_report are each computed at most once per
// (part, step) pair during one actions() call, and invalidated
// explicitly after a re-run. should_step_run is not cached; it is
// recomputed from those three facts on every call.
package statemgr

import (
	"github.com/cmatsuoka/partbuilder/internal/ephemeral"
	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

// Manager is the memoized facts layer the sequencer queries. It owns
// one ephemeral.Store exclusively; no other component mutates it.
type Manager struct {
	parts    *part.Set
	store    *ephemeral.Store
	provider ephemeral.CurrentValueProvider
	outdated ephemeral.OutdatedChecker

	stepsRun         map[string]map[step.Step]bool
	dirtyReports     map[string]map[step.Step]*ephemeral.DirtyReport
	dirtyComputed    map[string]map[step.Step]bool
	outdatedReports  map[string]map[step.Step]*ephemeral.OutdatedReport
	outdatedComputed map[string]map[step.Step]bool

	// everRan is a snapshot of has_step_run taken at construction time,
	// before any planning pass mutates the ephemeral store. A re-run
	// cascades CleanPart upward through every later step of the same
	// part, which makes those steps look never-run to HasStepRun even
	// though they genuinely ran before this pass started; everRan lets
	// the sequencer still label them as re-runs instead of fresh runs.
	everRan map[string]map[step.Step]bool
}

// New builds a Manager over parts, loading ephemeral state from
// adapter. provider and outdated may be nil to use the library
// defaults (OptionsProvider and DefaultOutdatedChecker).
func New(parts *part.Set, adapter state.Adapter, provider ephemeral.CurrentValueProvider, outdated ephemeral.OutdatedChecker) (*Manager, error) {
	store, err := ephemeral.NewStore(parts.All(), adapter)
	if err != nil {
		return nil, err
	}

	if provider == nil {
		provider = &ephemeral.OptionsProvider{Parts: parts}
	}
	if outdated == nil {
		outdated = ephemeral.NewDefaultOutdatedChecker(parts)
	}

	m := &Manager{
		parts:            parts,
		store:            store,
		provider:         provider,
		outdated:         outdated,
		stepsRun:         make(map[string]map[step.Step]bool),
		dirtyReports:     make(map[string]map[step.Step]*ephemeral.DirtyReport),
		dirtyComputed:    make(map[string]map[step.Step]bool),
		outdatedReports:  make(map[string]map[step.Step]*ephemeral.OutdatedReport),
		outdatedComputed: make(map[string]map[step.Step]bool),
		everRan:          make(map[string]map[step.Step]bool),
	}

	for _, p := range parts.All() {
		snapshot := make(map[step.Step]bool)
		if latest, ok := store.LatestStep(p.Name); ok {
			for _, s := range step.All {
				if s <= latest {
					snapshot[s] = true
				}
			}
		}
		m.everRan[p.Name] = snapshot
	}

	return m, nil
}

// EverRan reports whether (partName, s) had already run at the moment
// this Manager was constructed, regardless of any CleanPart/ClearStep
// mutation performed since. The sequencer uses this to distinguish a
// genuinely fresh run from a step that looks never-run only because an
// earlier step's re-run cascaded a clean upward onto it.
func (m *Manager) EverRan(partName string, s step.Step) bool {
	return m.everRan[partName][s]
}

// SetState records fresh state for (partName, s) in the ephemeral store,
// used by the sequencer when emitting a fresh or re-run action.
func (m *Manager) SetState(partName string, s step.Step, st state.PartState) {
	m.store.Add(partName, s, st)
}

// StateFor returns the ephemeral state recorded for (partName, s), for
// an executor to persist via an Adapter once the action it backs has
// actually completed.
func (m *Manager) StateFor(partName string, s step.Step) (state.PartState, bool) {
	return m.store.Get(partName, s)
}

// HasStepRun reports whether step s has a recorded run for partName,
// under "latest recorded step" semantics: every step at or below the
// highest step with recorded state counts as run.
func (m *Manager) HasStepRun(partName string, s step.Step) bool {
	m.ensureStepsRun(partName)
	return m.stepsRun[partName][s]
}

func (m *Manager) ensureStepsRun(partName string) {
	if m.stepsRun[partName] != nil {
		return
	}

	run := make(map[step.Step]bool)
	latest, ok := m.store.LatestStep(partName)
	if ok {
		for _, s := range step.All {
			if s <= latest {
				run[s] = true
			}
		}
	}
	m.stepsRun[partName] = run
}

// AddStepRun records that the sequencer has scheduled a fresh or
// re-run action for (partName, s), so dependents observe it as run
// within the same plan.
func (m *Manager) AddStepRun(partName string, s step.Step) {
	m.ensureStepsRun(partName)
	m.stepsRun[partName][s] = true
}

// OutdatedReport returns the memoized outdatedness report for
// (partName, s), or nil if the step is not outdated.
func (m *Manager) OutdatedReport(partName string, s step.Step) (*ephemeral.OutdatedReport, error) {
	if m.outdatedComputed[partName] != nil && m.outdatedComputed[partName][s] {
		return m.outdatedReports[partName][s], nil
	}

	report, err := m.outdated.Outdated(partName, s, m.store)
	if err != nil {
		return nil, err
	}

	if m.outdatedReports[partName] == nil {
		m.outdatedReports[partName] = make(map[step.Step]*ephemeral.OutdatedReport)
		m.outdatedComputed[partName] = make(map[step.Step]bool)
	}
	m.outdatedReports[partName][s] = report
	m.outdatedComputed[partName][s] = true

	return report, nil
}

// DirtyReport returns the memoized dirtiness report for (partName, s):
// first the step's own property/option drift, then — if clean on that
// front — whether any recursive dependency's prerequisite step changed
// or should itself run.
func (m *Manager) DirtyReport(partName string, s step.Step) (*ephemeral.DirtyReport, error) {
	if m.dirtyComputed[partName] != nil && m.dirtyComputed[partName][s] {
		return m.dirtyReports[partName][s], nil
	}

	if report := m.store.DirtyReportForPart(partName, s, m.provider); report != nil {
		m.markDirtyComputed(partName, s, report)
		return report, nil
	}

	prereq := step.DependencyPrerequisiteStep(s)
	deps, err := m.parts.RecursiveDependencies(partName)
	if err != nil {
		return nil, err
	}

	thisState, thisOK := m.store.Get(partName, s)

	var changed []ephemeral.Dependency
	for _, dep := range deps {
		prereqState, prereqOK := m.store.Get(dep.Name, prereq)

		changedByTimestamp := false
		if prereqOK && thisOK {
			changedByTimestamp = thisState.Timestamp < prereqState.Timestamp
		}

		shouldRun, err := m.ShouldStepRun(dep.Name, prereq)
		if err != nil {
			return nil, err
		}

		if changedByTimestamp || shouldRun {
			changed = append(changed, ephemeral.Dependency{PartName: dep.Name, Step: prereq})
		}
	}

	if len(changed) > 0 {
		report := &ephemeral.DirtyReport{ChangedDependencies: changed}
		m.markDirtyComputed(partName, s, report)
		return report, nil
	}

	m.markDirtyComputed(partName, s, nil)
	return nil, nil
}

func (m *Manager) markDirtyComputed(partName string, s step.Step, report *ephemeral.DirtyReport) {
	if m.dirtyReports[partName] == nil {
		m.dirtyReports[partName] = make(map[step.Step]*ephemeral.DirtyReport)
		m.dirtyComputed[partName] = make(map[step.Step]bool)
	}
	m.dirtyReports[partName][s] = report
	m.dirtyComputed[partName][s] = true
}

// ShouldStepRun is true if s has not run, or is dirty, or is outdated,
// or if the same predicate holds for the immediately preceding step in
// the four-step lifecycle. Recursion is bounded by the lifecycle depth
// (at most four levels), never by the dependency graph.
func (m *Manager) ShouldStepRun(partName string, s step.Step) (bool, error) {
	if !m.HasStepRun(partName, s) {
		return true, nil
	}

	outdated, err := m.OutdatedReport(partName, s)
	if err != nil {
		return false, err
	}
	if outdated != nil {
		return true, nil
	}

	dirty, err := m.DirtyReport(partName, s)
	if err != nil {
		return false, err
	}
	if dirty != nil {
		return true, nil
	}

	previous := s.PreviousSteps()
	if len(previous) == 0 {
		return false, nil
	}

	return m.ShouldStepRun(partName, previous[len(previous)-1])
}

// CleanPart marks s and every step at or above it as clean by removing
// their ephemeral state, mirroring the source's clean_part.
func (m *Manager) CleanPart(partName string, s step.Step) {
	for i := len(step.All) - 1; i >= 0; i-- {
		st := step.All[i]
		if st >= s {
			m.store.Remove(partName, st)
		}
	}
}

// ClearStep invalidates the three memoized facts for (partName, s), so
// later iterations of the same actions() call recompute them against
// the freshly-cleaned ephemeral state.
func (m *Manager) ClearStep(partName string, s step.Step) {
	if run, ok := m.stepsRun[partName]; ok {
		delete(run, s)
		if len(run) == 0 {
			delete(m.stepsRun, partName)
		}
	}
	if computed, ok := m.outdatedComputed[partName]; ok {
		delete(computed, s)
		delete(m.outdatedReports[partName], s)
	}
	if computed, ok := m.dirtyComputed[partName]; ok {
		delete(computed, s)
		delete(m.dirtyReports[partName], s)
	}
}
