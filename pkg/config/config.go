// SPDX-License-Identifier: AGPL-3.0-or-later

/*

partbuilder - a parts lifecycle engine: plans and runs PULL/BUILD/STAGE/PRIME
actions across a dependency graph of named parts.

*/

// Package config loads the parts document consumed by the lifecycle facade
// and merges it with built-in defaults and CLI-flag overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Feature: CORE_CONFIG
// Spec: spec/core/config.md

// ErrConfigNotFound is returned when the config file does not exist at the given path.
var ErrConfigNotFound = errors.New("partbuilder config not found")

// Document is the on-disk parts document: a "parts" map from part name to
// its raw options, plus an optional "config" section carrying the scalar
// facade options a document author wants to pin (work_dir, target_arch,
// ...). Everything under a part's options besides `after` is opaque
// passthrough, per spec.md §6; the engine never validates it.
type Document struct {
	Parts  map[string]map[string]any `yaml:"parts"`
	Config Options                   `yaml:"config,omitempty"`
}

// Options carries the lifecycle facade's scalar configuration: the fields
// of spec.md §6's "Constructor options for the facade" table that are not
// the parts document itself. It doubles as the merge target for the
// three-way precedence CLI flag > document > built-in default.
type Options struct {
	BuildPackages     []string `yaml:"build_packages,omitempty"`
	WorkDir           string   `yaml:"work_dir,omitempty"`
	TargetArch        string   `yaml:"target_arch,omitempty"`
	PlatformID        string   `yaml:"platform_id,omitempty"`
	PlatformVersionID string   `yaml:"platform_version_id,omitempty"`
	ParallelBuildCount int     `yaml:"parallel_build_count,omitempty"`
	LocalPluginsDir   string   `yaml:"local_plugins_dir,omitempty"`
	StateBackend      string   `yaml:"state_backend,omitempty"`
}

// DefaultOptions returns the engine's built-in defaults, the lowest-priority
// layer of the merge.
func DefaultOptions() Options {
	return Options{
		WorkDir:            ".",
		ParallelBuildCount: 1,
		StateBackend:       "file",
	}
}

// DefaultConfigPath returns the default parts document path for the
// current working directory.
func DefaultConfigPath() string {
	return "partbuilder.yml"
}

// Exists reports whether a config file exists at the given path.
// It returns (false, nil) if the file does not exist.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// Load reads and parses the parts document from the given path.
//
// It returns ErrConfigNotFound if the file does not exist. Non-goal per
// spec.md §1: the parts document schema itself (the shape of each part's
// options) is assumed pre-validated and is never inspected here; only the
// document's own top-level structure is checked.
func Load(path string) (*Document, error) {
	exists, err := Exists(path)
	if err != nil {
		return nil, fmt.Errorf("checking config existence: %w", err)
	}

	if !exists {
		return nil, ErrConfigNotFound
	}

	// nolint:gosec // G304: reading config file from user-specified path is expected behavior
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := validate(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

func validate(doc *Document) error {
	if doc.Parts == nil {
		doc.Parts = map[string]map[string]any{}
	}

	for name := range doc.Parts {
		if name == "" {
			return errors.New("config: part name must be non-empty")
		}
	}

	return nil
}

// Resolve merges doc's config section and flagOverrides onto the built-in
// defaults, flag values winning over the document, the document winning
// over defaults. doc may be nil (no document found, e.g. for `partbuilder
// state`); flagOverrides may be a zero Options if no flags were set.
//
// Fields are merged with dario.cat/mergo: a field is only taken from a
// higher-priority layer when that layer actually sets it (mergo treats a
// zero value as "unset"), which is what gives flag > document > default
// its meaning for both scalars and the BuildPackages slice.
func Resolve(doc *Document, flagOverrides Options) (Options, error) {
	resolved := DefaultOptions()

	if doc != nil {
		if err := mergo.Merge(&resolved, doc.Config, mergo.WithOverride); err != nil {
			return Options{}, fmt.Errorf("merging document config: %w", err)
		}
	}

	if err := mergo.Merge(&resolved, flagOverrides, mergo.WithOverride); err != nil {
		return Options{}, fmt.Errorf("merging flag overrides: %w", err)
	}

	return resolved, nil
}
