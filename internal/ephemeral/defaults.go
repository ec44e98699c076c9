package ephemeral

import (
	"os"

	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

// OptionsProvider is the default CurrentValueProvider: a part's current
// "properties of interest" are its own options (minus the engine-owned
// `after` key), and its current "project options of interest" are
// ProjectOptions, shared by every part and step. The default provider
// the state manager builds leaves ProjectOptions empty.
type OptionsProvider struct {
	Parts          *part.Set
	ProjectOptions map[string]any
}

// CurrentProperties returns partName's options, excluding `after`.
func (p *OptionsProvider) CurrentProperties(partName string, _ step.Step) map[string]any {
	pt, ok := p.Parts.Get(partName)
	if !ok {
		return nil
	}

	out := make(map[string]any, len(pt.Options))
	for k, v := range pt.Options {
		if k == "after" {
			continue
		}
		out[k] = v
	}
	return out
}

// CurrentOptions returns the project-wide option set, identical for
// every part and step.
func (p *OptionsProvider) CurrentOptions(_ string, _ step.Step) map[string]any {
	return p.ProjectOptions
}

// DefaultOutdatedChecker implements the two outdatedness triggers named
// in spec 4.E: an earlier step in the same part's lifecycle ran more
// recently than the step under inspection, or (PULL only) the part's
// source directory changed on disk after PULL's recorded state. The
// source check compares only the modification time of the SrcDir
// directory itself; files beneath it are not scanned.
type DefaultOutdatedChecker struct {
	Parts *part.Set

	// statSrcDir is overridable for tests; defaults to os.Stat.
	statSrcDir func(path string) (os.FileInfo, error)
}

// NewDefaultOutdatedChecker returns a DefaultOutdatedChecker backed by
// the real filesystem.
func NewDefaultOutdatedChecker(parts *part.Set) *DefaultOutdatedChecker {
	return &DefaultOutdatedChecker{Parts: parts, statSrcDir: os.Stat}
}

// Outdated implements OutdatedChecker.
func (c *DefaultOutdatedChecker) Outdated(partName string, s step.Step, store *Store) (*OutdatedReport, error) {
	recorded, ok := store.Get(partName, s)
	if !ok {
		return nil, nil
	}

	for _, earlier := range s.PreviousSteps() {
		earlierState, ok := store.Get(partName, earlier)
		if !ok {
			continue
		}
		if earlierState.Timestamp > recorded.Timestamp {
			return &OutdatedReport{Reason: earlier.String() + " ran more recently than " + s.String()}, nil
		}
	}

	if s == step.Pull {
		pt, ok := c.Parts.Get(partName)
		if ok {
			stat := c.statSrcDir
			if stat == nil {
				stat = os.Stat
			}
			if info, err := stat(pt.SrcDir); err == nil {
				if info.ModTime().Unix() > recorded.Timestamp {
					return &OutdatedReport{Reason: "source directory changed since last pull"}, nil
				}
			}
		}
	}

	return nil, nil
}
