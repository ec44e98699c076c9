// Package ephemeral holds the in-memory mirror of persistent part state
// used during one planning pass: a pure memory-backed state control,
// initialized from the persistent adapter and mutated only by the
// sequencer. Nothing here is written back to disk.
package ephemeral

import (
	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

// Store is a pure memory-backed state control, initialized from the
// persistent state for every (part, step) pair. It is owned exclusively
// by one state manager; nothing outside the sequencer mutates it.
type Store struct {
	states map[string]map[step.Step]state.PartState
}

// NewStore builds a Store by loading every (part, step) pair in parts
// from adapter, keeping only entries whose Timestamp is non-zero.
func NewStore(parts []part.Part, adapter state.Adapter) (*Store, error) {
	s := &Store{states: make(map[string]map[step.Step]state.PartState, len(parts))}

	for _, p := range parts {
		s.states[p.Name] = make(map[step.Step]state.PartState)
		for _, st := range step.All {
			loaded, err := adapter.Load(p.Name, st)
			if err != nil {
				return nil, err
			}
			if !loaded.Absent() {
				s.Add(p.Name, st, loaded)
			}
		}
	}

	return s, nil
}

// Add records state for (partName, s).
func (s *Store) Add(partName string, st step.Step, ps state.PartState) {
	if s.states == nil {
		s.states = make(map[string]map[step.Step]state.PartState)
	}
	if s.states[partName] == nil {
		s.states[partName] = make(map[step.Step]state.PartState)
	}
	s.states[partName][st] = ps
}

// Remove deletes the recorded state for (partName, s), if any.
func (s *Store) Remove(partName string, st step.Step) {
	delete(s.states[partName], st)
}

// Test reports whether state is recorded for (partName, s).
func (s *Store) Test(partName string, st step.Step) bool {
	_, ok := s.states[partName][st]
	return ok
}

// Get returns the recorded state for (partName, s) and whether it exists.
func (s *Store) Get(partName string, st step.Step) (state.PartState, bool) {
	ps, ok := s.states[partName][st]
	return ps, ok
}

// LatestStep returns the highest step with recorded state for partName,
// and false if no step has run.
func (s *Store) LatestStep(partName string) (step.Step, bool) {
	for i := len(step.All) - 1; i >= 0; i-- {
		st := step.All[i]
		if s.Test(partName, st) {
			return st, true
		}
	}
	return 0, false
}
