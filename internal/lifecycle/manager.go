// Package lifecycle implements the facade that sits between an entry
// point (the CLI, or any other caller) and the sequencer: it owns the
// parts set, the persistent adapter, and the step-info metadata record,
// and hands a planned sequence of actions to an external executor.
package lifecycle

import (
	"context"

	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/sequencer"
	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/step"
	"github.com/cmatsuoka/partbuilder/pkg/perrors"
)

// Executor runs one planned action against a part. It is the only
// collaborator that carries out a step's work; the sequencer only plans,
// and the facade only persists each completed step's state through the
// adapter.
type Executor interface {
	RunAction(ctx context.Context, action step.PartAction, p part.Part, info StepInfo) error
}

// Options configures a Manager. PartsData mirrors the YAML document's
// top-level "parts" map: part name to its raw options.
type Options struct {
	PartsData         map[string]map[string]any
	BuildPackages     []string
	WorkDir           string
	TargetArch        string
	PlatformID        string
	PlatformVersionID string
	ParallelBuildCount int
	LocalPluginsDir   string

	Adapter  state.Adapter
	Executor Executor
}

// Manager is the lifecycle facade: LifecycleManager's Go counterpart.
type Manager struct {
	parts         []part.Part
	buildPackages []string
	sequencer     *sequencer.Sequencer
	stepInfo      StepInfo
	adapter       state.Adapter
	executor      Executor

	preStepCallbacks  []stepCallback
	postStepCallbacks []stepCallback
	plugins           map[string]any
}

// stepCallback pairs a registered callback with the step names it should
// fire for; an empty steps list matches every step.
type stepCallback struct {
	fn    func(StepInfo)
	steps map[string]bool
}

func (c stepCallback) matches(s step.Step) bool {
	if len(c.steps) == 0 {
		return true
	}
	return c.steps[s.String()]
}

// NewManager builds the parts set from opts.PartsData, sorts and
// validates it (returning *perrors.InvalidPartNameError or
// *perrors.DependencyCycleError on a malformed `after` graph), and wires
// a Sequencer over opts.Adapter.
func NewManager(opts Options) (*Manager, error) {
	if opts.ParallelBuildCount <= 0 {
		opts.ParallelBuildCount = 1
	}

	parts := make([]part.Part, 0, len(opts.PartsData))
	for name, raw := range opts.PartsData {
		parts = append(parts, part.New(name, raw, opts.WorkDir))
	}

	seq, err := sequencer.New(parts, opts.Adapter, nil, nil)
	if err != nil {
		return nil, err
	}

	info := NewStepInfo(opts.WorkDir, opts.TargetArch, opts.PlatformID, opts.PlatformVersionID,
		opts.ParallelBuildCount, opts.LocalPluginsDir)

	return &Manager{
		parts:         parts,
		buildPackages: opts.BuildPackages,
		sequencer:     seq,
		stepInfo:      info,
		adapter:       opts.Adapter,
		executor:      opts.Executor,
		plugins:       make(map[string]any),
	}, nil
}

// Actions plans the action sequence for targetStep, restricted to
// partNames when non-empty.
func (m *Manager) Actions(targetStep step.Step, partNames []string) ([]step.PartAction, error) {
	return m.sequencer.Actions(targetStep, partNames)
}

// ExecutionReport summarizes one Execute call: every action that ran to
// completion, and the first failure (if any), since the facade never
// retries an executor failure and stops the run there.
type ExecutionReport struct {
	Completed []step.PartAction
	Failed    *step.PartAction
	Err       error
}

// Execute runs actions in order against the configured Executor. Per
// step, on success, the planned ephemeral state for (part, step) is
// persisted through the adapter so it survives past this process. A
// failing action halts the run immediately; actions already completed
// remain persisted.
func (m *Manager) Execute(ctx context.Context, actions []step.PartAction) ExecutionReport {
	report := ExecutionReport{}

	for _, action := range actions {
		p, ok := m.sequencer.Part(action.PartName)
		if !ok {
			report.Err = &perrors.InvalidPartNameError{PartName: action.PartName}
			report.Failed = &action
			return report
		}

		if err := m.runPreStepCallbacks(action); err != nil {
			report.Err = err
			report.Failed = &action
			return report
		}

		if m.executor != nil {
			if err := m.executor.RunAction(ctx, action, p, m.stepInfo); err != nil {
				report.Err = &perrors.ExecutorError{PartName: action.PartName, StepName: action.Step.String(), Cause: err}
				report.Failed = &action
				return report
			}
		}

		if !action.Action.IsSkip() && m.adapter != nil {
			if st, ok := m.sequencer.StateFor(action.PartName, action.Step); ok {
				if err := m.adapter.Save(action.PartName, action.Step, st); err != nil {
					report.Err = &perrors.ExecutorError{PartName: action.PartName, StepName: action.Step.String(), Cause: err}
					report.Failed = &action
					return report
				}
			}
		}

		if err := m.runPostStepCallbacks(action); err != nil {
			report.Err = err
			report.Failed = &action
			return report
		}

		report.Completed = append(report.Completed, action)
	}

	return report
}

func (m *Manager) runPreStepCallbacks(action step.PartAction) error {
	for _, cb := range m.preStepCallbacks {
		if cb.matches(action.Step) {
			cb.fn(m.stepInfo)
		}
	}
	return nil
}

func (m *Manager) runPostStepCallbacks(action step.PartAction) error {
	for _, cb := range m.postStepCallbacks {
		if cb.matches(action.Step) {
			cb.fn(m.stepInfo)
		}
	}
	return nil
}

// RegisterPreStepCallback registers a function invoked before each
// planned action runs. steps, if non-empty, restricts invocation to
// matching step names; an empty list matches every step. Mirrors
// original_source/partbuilder/_manager.py's register_pre_step_callback,
// which was itself a no-op stub — here it is wired up to something the
// caller can actually observe.
func (m *Manager) RegisterPreStepCallback(callback func(StepInfo), steps []string) {
	m.preStepCallbacks = append(m.preStepCallbacks, newStepCallback(callback, steps))
}

// RegisterPostStepCallback is the Execute-time counterpart of
// RegisterPreStepCallback, invoked after each planned action completes.
func (m *Manager) RegisterPostStepCallback(callback func(StepInfo), steps []string) {
	m.postStepCallbacks = append(m.postStepCallbacks, newStepCallback(callback, steps))
}

// RegisterPlugin records a named plugin value for later lookup. Like its
// source counterpart, it never influences planning: the sequencer has no
// plugin hook.
func (m *Manager) RegisterPlugin(name string, plugin any) {
	m.plugins[name] = plugin
}

func newStepCallback(fn func(StepInfo), steps []string) stepCallback {
	if len(steps) == 0 {
		return stepCallback{fn: fn}
	}
	allowed := make(map[string]bool, len(steps))
	for _, s := range steps {
		allowed[s] = true
	}
	return stepCallback{fn: fn, steps: allowed}
}
