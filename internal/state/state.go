// Package state defines PartState, the record persisted once a lifecycle
// step completes, and the Adapter interface through which the sequencer's
// ephemeral store loads it. Adapters never make scheduling decisions;
// they only move PartState to and from durable storage.
package state

import "github.com/cmatsuoka/partbuilder/internal/step"

// PartState is the opaque record created when a step completes
// successfully. A Timestamp of zero is the sentinel for "no record
// exists" — never a value an adapter should produce for a step that has
// actually run.
type PartState struct {
	Timestamp                int64
	PropertiesOfInterest     map[string]any
	ProjectOptionsOfInterest map[string]any
}

// Absent reports whether s represents "no record" rather than a real,
// previously-saved state.
func (s PartState) Absent() bool { return s.Timestamp == 0 }

// Adapter is the persistent-state contract. The engine requires only
// that Timestamp be monotonic across Save calls within a run; adapters
// are free to choose their own storage layout.
type Adapter interface {
	// Load returns the recorded state for (partName, step), or a
	// PartState with Timestamp == 0 if none exists.
	Load(partName string, s step.Step) (PartState, error)

	// Save persists state for (partName, step). Called by the lifecycle
	// facade's Execute once an action has completed, never by the
	// sequencer or state manager.
	Save(partName string, s step.Step, st PartState) error
}
