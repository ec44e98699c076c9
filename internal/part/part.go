// Package part defines the Part descriptor and the topological ordering
// and dependency-closure operations over a set of parts.
package part

import "path/filepath"

// Part is an immutable descriptor for one named unit of work: its raw
// options, derived working paths, and the names it depends on via
// `after`. Two parts are equal iff their names are equal.
type Part struct {
	Name    string
	Options map[string]any

	PartDir    string
	SrcDir     string
	BuildDir   string
	InstallDir string
	StateDir   string
}

// New constructs a Part from its name, raw options, and the base work_dir.
// Paths are derived by string join only; no I/O is performed.
func New(name string, options map[string]any, workDir string) Part {
	if workDir == "" {
		workDir = "."
	}
	partDir := filepath.Join(workDir, name)
	return Part{
		Name:       name,
		Options:    options,
		PartDir:    partDir,
		SrcDir:     filepath.Join(partDir, "src"),
		BuildDir:   filepath.Join(partDir, "build"),
		InstallDir: filepath.Join(partDir, "install"),
		StateDir:   filepath.Join(partDir, "state"),
	}
}

// Equal reports whether p and other are the same part, by name.
func (p Part) Equal(other Part) bool {
	return p.Name == other.Name
}

// DependencyNames returns the part names in this part's `after` list, the
// only key of Options the engine inspects.
func (p Part) DependencyNames() []string {
	raw, ok := p.Options["after"]
	if !ok {
		return nil
	}

	switch v := raw.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
