// Package sequencer implements the core planning algorithm: given a
// target step and an optional part selection, it produces the ordered
// list of actions the executor must run.
package sequencer

import (
	"time"

	"github.com/cmatsuoka/partbuilder/internal/ephemeral"
	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/statemgr"
	"github.com/cmatsuoka/partbuilder/internal/step"
	"github.com/cmatsuoka/partbuilder/pkg/perrors"
)

// Sequencer plans, but never executes, actions over a fixed set of
// parts. One Sequencer owns one statemgr.Manager exclusively.
type Sequencer struct {
	sortedParts []part.Part
	set         *part.Set
	sm          *statemgr.Manager
	clock       func() int64

	// Fixed for the duration of one Actions() call.
	outerTarget step.Step
	scopeSet    map[string]bool

	plan    []step.PartAction
	planned map[string]map[step.Step]bool
}

// New sorts parts topologically and builds the state manager that will
// back every actions() call for the lifetime of this Sequencer.
func New(parts []part.Part, adapter state.Adapter, provider ephemeral.CurrentValueProvider, outdated ephemeral.OutdatedChecker) (*Sequencer, error) {
	set, err := part.NewSet(parts)
	if err != nil {
		return nil, err
	}

	sorted, err := part.TopoSort(parts)
	if err != nil {
		return nil, err
	}

	sm, err := statemgr.New(set, adapter, provider, outdated)
	if err != nil {
		return nil, err
	}

	return &Sequencer{sortedParts: sorted, set: set, sm: sm, clock: func() int64 { return time.Now().Unix() }}, nil
}

// Actions determines the plan for targetStep, restricted to partNames
// when non-empty. Dependencies of a selected part still appear in the
// plan when the prepare-step mechanism must pull them in — see prepare.
func (s *Sequencer) Actions(targetStep step.Step, partNames []string) ([]step.PartAction, error) {
	selected := map[string]bool{}
	for _, n := range partNames {
		if _, ok := s.set.Get(n); !ok {
			return nil, &perrors.InvalidPartNameError{PartName: n}
		}
		selected[n] = true
	}

	scope := s.sortedParts
	scopeSet := make(map[string]bool, len(s.sortedParts))
	if len(selected) > 0 {
		scope = nil
		for _, p := range s.sortedParts {
			if selected[p.Name] {
				scope = append(scope, p)
				scopeSet[p.Name] = true
			}
		}
	} else {
		for _, p := range s.sortedParts {
			scopeSet[p.Name] = true
		}
	}

	s.outerTarget = targetStep
	s.scopeSet = scopeSet
	s.plan = nil
	s.planned = make(map[string]map[step.Step]bool)

	if err := s.run(targetStep, scope, selected); err != nil {
		return nil, err
	}

	return s.plan, nil
}

// run is the inner planning loop, reused both for the top-level call
// and for prepare-step recursion (which plans a narrower target/scope
// against the same in-progress plan, under the same fixed outerTarget
// and scopeSet).
func (s *Sequencer) run(target step.Step, scope []part.Part, selected map[string]bool) error {
	for _, current := range append(append([]step.Step(nil), target.PreviousSteps()...), target) {
		for _, p := range scope {
			if err := s.schedule(p, current, target, selected); err != nil {
				return err
			}
		}
	}
	return nil
}

// schedule implements the five-way decision of spec 4.G for one
// (part, step) pair. requestedTarget/selected describe the narrower
// call that reached this step (the top-level call when no prepare
// recursion is in progress); "explicitly requested" only fires against
// that narrower target, never against the fixed outerTarget.
func (s *Sequencer) schedule(p part.Part, current step.Step, requestedTarget step.Step, selected map[string]bool) error {
	if s.isPlanned(p.Name, current) {
		return nil
	}

	// 1. Never run (or looks that way because a re-run cascaded a clean
	// upward onto it — see everRan).
	if !s.sm.HasStepRun(p.Name, current) {
		if err := s.prepare(p, current); err != nil {
			return err
		}
		if s.sm.EverRan(p.Name, current) {
			return s.emitRerun(p, current, "previous run invalidated by an upstream re-run")
		}
		return s.emitFresh(p, current)
	}

	// 2. Explicitly requested.
	if len(selected) > 0 && current == requestedTarget && selected[p.Name] {
		if err := s.prepare(p, current); err != nil {
			return err
		}
		return s.emitRerun(p, current, "requested step")
	}

	// 3. Dirty.
	dirty, err := s.sm.DirtyReport(p.Name, current)
	if err != nil {
		return err
	}
	if dirty != nil {
		if err := s.prepare(p, current); err != nil {
			return err
		}
		return s.emitRerun(p, current, dirty.Summary())
	}

	// 4. Outdated.
	outdated, err := s.sm.OutdatedReport(p.Name, current)
	if err != nil {
		return err
	}
	if outdated != nil {
		if current == step.Pull || current == step.Build {
			return s.emitUpdate(p, current, outdated.Summary())
		}
		if err := s.prepare(p, current); err != nil {
			return err
		}
		return s.emitRerun(p, current, outdated.Summary())
	}

	// 5. Otherwise: skip.
	return s.emitSkip(p, current, "already ran")
}

// prepare injects dependency actions before a fresh or re-run action on
// (p, current), but only when current > PULL: dependency_prerequisite_step(PULL)
// is STAGE, which would otherwise require staging dependencies before a
// part's own PULL — deliberately not required, per spec 4.G/9.
//
// Injection only happens when the natural top-level loop, already
// iterating every step up to outerTarget over the original scope,
// cannot be trusted to plan the dependency's prerequisite step itself:
// either the dependency was excluded from scope by a part selection, or
// its prerequisite step lies beyond outerTarget entirely. In the common
// full-scope case this never fires, and dependency ordering across
// parts at the same step (guaranteed by topological traversal) already
// gives correct plans; the one thing it deliberately does not guarantee
// is that a dependency's *later* step is moved ahead of a dependent's
// *earlier* step when both fall naturally inside the same call.
func (s *Sequencer) prepare(p part.Part, current step.Step) error {
	if current <= step.Pull {
		return nil
	}

	prereq := step.DependencyPrerequisiteStep(current)
	deps, err := s.set.RecursiveDependencies(p.Name)
	if err != nil {
		return err
	}

	for _, dep := range deps {
		if s.scopeSet[dep.Name] && prereq <= s.outerTarget {
			continue
		}
		if err := s.run(prereq, []part.Part{dep}, map[string]bool{dep.Name: true}); err != nil {
			return err
		}
	}

	return nil
}

func (s *Sequencer) emitFresh(p part.Part, current step.Step) error {
	action, err := current.ActionFor()
	if err != nil {
		return err
	}

	s.recordRun(p, current)
	s.sm.AddStepRun(p.Name, current)
	s.append(p, action, current, "")
	return nil
}

func (s *Sequencer) emitRerun(p part.Part, current step.Step, reason string) error {
	s.sm.CleanPart(p.Name, current)
	for _, st := range append([]step.Step{current}, current.NextSteps()...) {
		s.sm.ClearStep(p.Name, st)
	}

	action, err := current.RerunActionFor()
	if err != nil {
		return err
	}

	s.recordRun(p, current)
	s.sm.AddStepRun(p.Name, current)
	s.append(p, action, current, reason)
	return nil
}

func (s *Sequencer) emitUpdate(p part.Part, current step.Step, reason string) error {
	var action step.Action
	switch current {
	case step.Pull:
		action = step.ActionUpdatePull
	case step.Build:
		action = step.ActionUpdateBuild
	default:
		return perrors.NewInternalError("update action requested for a step other than PULL/BUILD")
	}

	s.recordRun(p, current)
	s.sm.AddStepRun(p.Name, current)
	s.append(p, action, current, reason)
	return nil
}

func (s *Sequencer) emitSkip(p part.Part, current step.Step, reason string) error {
	action, err := current.SkipActionFor()
	if err != nil {
		return err
	}
	s.append(p, action, current, reason)
	return nil
}

// recordRun writes a fresh timestamped PartState into the ephemeral
// store so later scheduling decisions in the same plan (and any
// executor invocation that follows) observe the new run.
func (s *Sequencer) recordRun(p part.Part, current step.Step) {
	s.sm.SetState(p.Name, current, state.PartState{
		Timestamp:                s.clock(),
		PropertiesOfInterest:     optionsMinusAfter(p),
		ProjectOptionsOfInterest: map[string]any{},
	})
}

func optionsMinusAfter(p part.Part) map[string]any {
	out := make(map[string]any, len(p.Options))
	for k, v := range p.Options {
		if k == "after" {
			continue
		}
		out[k] = v
	}
	return out
}

// Part returns the part named name, and whether it was found.
func (s *Sequencer) Part(name string) (part.Part, bool) {
	return s.set.Get(name)
}

// StateFor returns the ephemeral state recorded for (partName, s) by the
// most recent Actions() call, for an executor to persist once the action
// it backs has actually completed.
func (s *Sequencer) StateFor(partName string, st step.Step) (state.PartState, bool) {
	return s.sm.StateFor(partName, st)
}

func (s *Sequencer) isPlanned(partName string, st step.Step) bool {
	return s.planned[partName][st]
}

func (s *Sequencer) append(p part.Part, action step.Action, current step.Step, reason string) {
	s.plan = append(s.plan, step.PartAction{
		PartName: p.Name,
		Action:   action,
		Step:     current,
		Reason:   reason,
	})

	if s.planned[p.Name] == nil {
		s.planned[p.Name] = make(map[step.Step]bool)
	}
	s.planned[p.Name][current] = true
}
