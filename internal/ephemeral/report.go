package ephemeral

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cmatsuoka/partbuilder/internal/step"
)

// Dependency names one dependency whose prerequisite step is implicated
// in a DirtyReport.
type Dependency struct {
	PartName string
	Step     step.Step
}

// DirtyReport explains why a step needs to be cleaned and re-run: either
// its own properties/options changed, or a dependency's prerequisite
// step has newer state. At least one field is non-empty whenever a
// DirtyReport is returned; a fully empty report is never constructed.
type DirtyReport struct {
	ChangedProperties   []string
	ChangedOptions      []string
	ChangedDependencies []Dependency
}

// Summary renders a one-line, human-facing reason for the plan.
func (r *DirtyReport) Summary() string {
	var parts []string
	if len(r.ChangedProperties) > 0 {
		parts = append(parts, fmt.Sprintf("properties changed: %s", strings.Join(r.ChangedProperties, ", ")))
	}
	if len(r.ChangedOptions) > 0 {
		parts = append(parts, fmt.Sprintf("options changed: %s", strings.Join(r.ChangedOptions, ", ")))
	}
	for _, d := range r.ChangedDependencies {
		parts = append(parts, fmt.Sprintf("dependency %s:%s changed", d.PartName, d.Step))
	}
	return strings.Join(parts, "; ")
}

// OutdatedReport signals that an earlier step in this part's lifecycle
// ran more recently than the step under inspection, or that the
// underlying source changed since PULL last ran.
type OutdatedReport struct {
	Reason string
}

// Summary renders a one-line, human-facing reason for the plan.
func (r *OutdatedReport) Summary() string { return r.Reason }

// CurrentValueProvider supplies the "current" properties and project
// options the engine compares recorded state against. The comparison
// source is pluggable; the engine treats the returned maps as opaque.
type CurrentValueProvider interface {
	CurrentProperties(partName string, s step.Step) map[string]any
	CurrentOptions(partName string, s step.Step) map[string]any
}

// DirtyReportForPart compares the recorded properties/options of
// (partName, s) against provider's current values and returns a
// DirtyReport naming the changed keys, or nil if nothing changed (or
// nothing has run yet — an absent step is never dirty, just not run).
func (s *Store) DirtyReportForPart(partName string, st step.Step, provider CurrentValueProvider) *DirtyReport {
	recorded, ok := s.Get(partName, st)
	if !ok {
		return nil
	}

	changedProps := diffKeys(recorded.PropertiesOfInterest, provider.CurrentProperties(partName, st))
	changedOpts := diffKeys(recorded.ProjectOptionsOfInterest, provider.CurrentOptions(partName, st))

	if len(changedProps) == 0 && len(changedOpts) == 0 {
		return nil
	}

	return &DirtyReport{ChangedProperties: changedProps, ChangedOptions: changedOpts}
}

// diffKeys returns, sorted, every key present in either map whose value
// differs (including keys added or removed entirely).
func diffKeys(recorded, current map[string]any) []string {
	seen := map[string]bool{}
	for k := range recorded {
		seen[k] = true
	}
	for k := range current {
		seen[k] = true
	}

	var changed []string
	for k := range seen {
		rv, rok := recorded[k]
		cv, cok := current[k]
		if rok != cok || !equalValue(rv, cv) {
			changed = append(changed, k)
		}
	}

	sort.Strings(changed)
	return changed
}

func equalValue(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// OutdatedChecker determines whether a step's recorded state has fallen
// behind an earlier influence (an earlier lifecycle step, or on-disk
// source). The comparison source is pluggable.
type OutdatedChecker interface {
	Outdated(partName string, s step.Step, store *Store) (*OutdatedReport, error)
}
