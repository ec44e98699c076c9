// Package step defines the Step and Action enumerations that drive the
// sequencer: the four well-known part lifecycle steps and the scheduling
// decisions the sequencer can emit for each of them.
package step

import "fmt"

// Step is one of the four well-known part lifecycle steps, totally ordered
// by the underlying integer.
type Step int

const (
	Pull Step = iota + 1
	Build
	Stage
	Prime
)

// All is the ordered list of every step, ascending.
var All = []Step{Pull, Build, Stage, Prime}

func (s Step) String() string {
	switch s {
	case Pull:
		return "pull"
	case Build:
		return "build"
	case Stage:
		return "stage"
	case Prime:
		return "prime"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Valid reports whether s is one of the four defined steps.
func (s Step) Valid() bool {
	return s >= Pull && s <= Prime
}

// PreviousSteps returns every step strictly before s, ascending.
func (s Step) PreviousSteps() []Step {
	var out []Step
	for _, c := range All {
		if c < s {
			out = append(out, c)
		}
	}
	return out
}

// NextSteps returns every step strictly after s, ascending.
func (s Step) NextSteps() []Step {
	var out []Step
	for _, c := range All {
		if c > s {
			out = append(out, c)
		}
	}
	return out
}

// ActionFor returns the fresh-run action for s.
func (s Step) ActionFor() (Action, error) {
	switch s {
	case Pull:
		return ActionPull, nil
	case Build:
		return ActionBuild, nil
	case Stage:
		return ActionStage, nil
	case Prime:
		return ActionPrime, nil
	default:
		return 0, fmt.Errorf("internal error: action for out-of-range step %v", s)
	}
}

// RerunActionFor returns the re-run action for s (emitted after cleaning a
// prior successful run of the step).
func (s Step) RerunActionFor() (Action, error) {
	switch s {
	case Pull:
		return ActionRepull, nil
	case Build:
		return ActionRebuild, nil
	case Stage:
		return ActionRestage, nil
	case Prime:
		return ActionReprime, nil
	default:
		return 0, fmt.Errorf("internal error: rerun action for out-of-range step %v", s)
	}
}

// SkipActionFor returns the skip action for s (emitted when the step's
// prior result remains valid).
func (s Step) SkipActionFor() (Action, error) {
	switch s {
	case Pull:
		return ActionSkipPull, nil
	case Build:
		return ActionSkipBuild, nil
	case Stage:
		return ActionSkipStage, nil
	case Prime:
		return ActionSkipPrime, nil
	default:
		return 0, fmt.Errorf("internal error: skip action for out-of-range step %v", s)
	}
}

// dependencyPrerequisiteSteps maps a step to the step its dependencies must
// have reached before this part may execute it. A part needs its
// dependencies staged before its own PULL/BUILD/STAGE, and primed before
// its own PRIME.
//
// DependencyPrerequisiteStep(Pull) == Stage looks backwards at first
// glance: with v2-style plugins dependencies need not be staged before
// PULL at all, which is why the sequencer only invokes the prepare step
// when current > Pull. The mapping itself is kept exactly as inherited so
// that callers comparing timestamps still compare against the right step.
func DependencyPrerequisiteStep(s Step) Step {
	if s <= Stage {
		return Stage
	}
	return s
}

// ParseStep parses a CLI-style lowercase step name, defaulting to Prime for
// anything unrecognized (matching the reference CLI's behavior).
func ParseStep(s string) Step {
	switch s {
	case "pull":
		return Pull
	case "build":
		return Build
	case "stage":
		return Stage
	case "prime":
		return Prime
	default:
		return Prime
	}
}
