// SPDX-License-Identifier: AGPL-3.0-or-later

// Package statefile is the default persistent state adapter: one JSON
// file per (part, step) under <work_dir>/<part>/state/<step>, written
// atomically via a temp-file-then-rename so a crash mid-write never
// corrupts the previous record.
//
// Note: statefile is local-file-based and not safe for concurrent
// modification from multiple processes. A single caller should own the
// state directory at any time.
package statefile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/cmatsuoka/partbuilder/internal/part"
	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

// Adapter is the default state.Adapter, backed by one JSON file per
// (part, step) under a work directory.
type Adapter struct {
	workDir string
	mu      sync.Mutex
}

// New returns a statefile.Adapter rooted at workDir. workDir defaults to
// "." when empty, matching part.New's convention.
func New(workDir string) *Adapter {
	if workDir == "" {
		workDir = "."
	}
	return &Adapter{workDir: workDir}
}

func (a *Adapter) pathFor(partName string, s step.Step) string {
	p := part.New(partName, nil, a.workDir)
	return filepath.Join(p.StateDir, s.String())
}

// record is the on-disk JSON shape for one (part, step) state file.
type record struct {
	Timestamp                int64          `json:"timestamp"`
	PropertiesOfInterest     map[string]any `json:"properties_of_interest"`
	ProjectOptionsOfInterest map[string]any `json:"project_options_of_interest"`
}

// Load returns the recorded state for (partName, s), or a zero-timestamp
// PartState if the backing file does not exist.
func (a *Adapter) Load(partName string, s step.Step) (state.PartState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := a.pathFor(partName, s)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return state.PartState{}, nil
		}
		return state.PartState{}, fmt.Errorf("reading state file %s: %w", path, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return state.PartState{}, fmt.Errorf("parsing state file %s: %w", path, err)
	}

	return state.PartState{
		Timestamp:                rec.Timestamp,
		PropertiesOfInterest:     rec.PropertiesOfInterest,
		ProjectOptionsOfInterest: rec.ProjectOptionsOfInterest,
	}, nil
}

// Save writes st for (partName, s) atomically: marshal, write to a
// uuid-suffixed temp file in the same directory, then rename over the
// final path.
func (a *Adapter) Save(partName string, s step.Step, st state.PartState) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := a.pathFor(partName, s)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating state directory %s: %w", dir, err)
	}

	rec := record{
		Timestamp:                st.Timestamp,
		PropertiesOfInterest:     st.PropertiesOfInterest,
		ProjectOptionsOfInterest: st.ProjectOptionsOfInterest,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state for %s:%s: %w", partName, s, err)
	}

	tmpFile := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", s, uuid.NewString()))
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("writing temporary state file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("renaming state file: %w", err)
	}

	return nil
}

// Remove deletes the state file for (partName, s), if present; a missing
// file is not an error. Neither the executor nor the lifecycle facade
// calls it: cleaning during planning only touches ephemeral state.
func (a *Adapter) Remove(partName string, s step.Step) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	path := a.pathFor(partName, s)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state file %s: %w", path, err)
	}
	return nil
}
