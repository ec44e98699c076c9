package step

import "fmt"

// Action is a scheduled operation on one step of one part: a fresh run, a
// re-run after cleaning, a non-destructive update, or a skip.
type Action int

const (
	ActionPull Action = iota + 1
	ActionBuild
	ActionStage
	ActionPrime

	ActionRepull
	ActionRebuild
	ActionRestage
	ActionReprime

	ActionSkipPull
	ActionSkipBuild
	ActionSkipStage
	ActionSkipPrime

	ActionUpdatePull
	ActionUpdateBuild
)

func (a Action) String() string {
	switch a {
	case ActionPull:
		return "PULL"
	case ActionBuild:
		return "BUILD"
	case ActionStage:
		return "STAGE"
	case ActionPrime:
		return "PRIME"
	case ActionRepull:
		return "REPULL"
	case ActionRebuild:
		return "REBUILD"
	case ActionRestage:
		return "RESTAGE"
	case ActionReprime:
		return "REPRIME"
	case ActionSkipPull:
		return "SKIP_PULL"
	case ActionSkipBuild:
		return "SKIP_BUILD"
	case ActionSkipStage:
		return "SKIP_STAGE"
	case ActionSkipPrime:
		return "SKIP_PRIME"
	case ActionUpdatePull:
		return "UPDATE_PULL"
	case ActionUpdateBuild:
		return "UPDATE_BUILD"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Verb returns a human-facing present participle for CLI rendering, e.g.
// "Pulling" for ActionPull and "Repulling" for ActionRepull.
func (a Action) Verb() string {
	switch a {
	case ActionPull:
		return "Pulling"
	case ActionBuild:
		return "Building"
	case ActionStage:
		return "Staging"
	case ActionPrime:
		return "Priming"
	case ActionRepull:
		return "Repulling"
	case ActionRebuild:
		return "Rebuilding"
	case ActionRestage:
		return "Restaging"
	case ActionReprime:
		return "Repriming"
	case ActionSkipPull, ActionSkipBuild, ActionSkipStage, ActionSkipPrime:
		return "Skipping"
	case ActionUpdatePull:
		return "Updating pulled sources for"
	case ActionUpdateBuild:
		return "Updating build for"
	default:
		return a.String()
	}
}

// IsSkip reports whether a is one of the four skip actions.
func (a Action) IsSkip() bool {
	switch a {
	case ActionSkipPull, ActionSkipBuild, ActionSkipStage, ActionSkipPrime:
		return true
	default:
		return false
	}
}

// PartAction is a single scheduled step emitted by the sequencer. It is
// immutable once appended to a plan.
type PartAction struct {
	PartName string
	Action   Action
	Step     Step
	Reason   string
}

func (a PartAction) String() string {
	if a.Reason != "" {
		return fmt.Sprintf("%s:%s (%s)", a.PartName, a.Action, a.Reason)
	}
	return fmt.Sprintf("%s:%s", a.PartName, a.Action)
}
