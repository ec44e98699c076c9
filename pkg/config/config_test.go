// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// Feature: CORE_CONFIG
// Spec: spec/core/config.md

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path != "partbuilder.yml" {
		t.Fatalf("expected DefaultConfigPath to return 'partbuilder.yml', got %q", path)
	}
}

func TestExists_ReportsCorrectly(t *testing.T) {
	tmpDir := t.TempDir()

	nonExisting := filepath.Join(tmpDir, "nope.yml")
	ok, err := Exists(nonExisting)
	if err != nil {
		t.Fatalf("expected no error for non-existing file, got: %v", err)
	}
	if ok {
		t.Fatalf("expected Exists to return false for non-existing file")
	}

	existing := filepath.Join(tmpDir, "partbuilder.yml")
	if err := os.WriteFile(existing, []byte("parts:\n  foo: {}\n"), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	ok, err = Exists(existing)
	if err != nil {
		t.Fatalf("expected no error for existing file, got: %v", err)
	}
	if !ok {
		t.Fatalf("expected Exists to return true for existing file")
	}
}

func TestLoad_ReturnsErrConfigNotFoundWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(filepath.Join(tmpDir, "nope.yml"))
	if err != ErrConfigNotFound {
		t.Fatalf("expected ErrConfigNotFound, got: %v", err)
	}
}

func TestLoad_ParsesPartsAndConfigSections(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "partbuilder.yml")

	contents := `
parts:
  foo:
    source: https://example.com/foo.git
  bar:
    after: [foo]
config:
  work_dir: /tmp/build
  target_arch: aarch64
  parallel_build_count: 4
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(doc.Parts))
	}

	after, ok := doc.Parts["bar"]["after"].([]any)
	if !ok || len(after) != 1 {
		t.Fatalf("expected bar.after to be a one-element list, got %#v", doc.Parts["bar"]["after"])
	}

	if doc.Config.WorkDir != "/tmp/build" {
		t.Errorf("expected work_dir '/tmp/build', got %q", doc.Config.WorkDir)
	}
	if doc.Config.TargetArch != "aarch64" {
		t.Errorf("expected target_arch 'aarch64', got %q", doc.Config.TargetArch)
	}
	if doc.Config.ParallelBuildCount != 4 {
		t.Errorf("expected parallel_build_count 4, got %d", doc.Config.ParallelBuildCount)
	}
}

func TestLoad_RejectsEmptyPartName(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "partbuilder.yml")

	if err := os.WriteFile(path, []byte("parts:\n  \"\": {}\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an empty part name")
	}
}

func TestLoad_MissingPartsKeyYieldsEmptyMap(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "partbuilder.yml")

	if err := os.WriteFile(path, []byte("config:\n  work_dir: build\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	doc, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Parts == nil || len(doc.Parts) != 0 {
		t.Fatalf("expected an empty (non-nil) parts map, got %#v", doc.Parts)
	}
}
