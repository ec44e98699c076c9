package part

import (
	"sort"

	"github.com/cmatsuoka/partbuilder/pkg/perrors"
)

// Set is the validated collection of all parts known to one planning pass.
// Constructing a Set checks that every name referenced by any `after` list
// actually exists; it does not check for cycles (that is TopoSort's job).
type Set struct {
	byName map[string]Part
	names  []string // insertion order, for deterministic iteration when needed
}

// NewSet validates and indexes parts. It returns *perrors.InvalidPartNameError
// if any `after` entry names a part that is not present in parts.
func NewSet(parts []Part) (*Set, error) {
	s := &Set{byName: make(map[string]Part, len(parts))}
	for _, p := range parts {
		s.byName[p.Name] = p
		s.names = append(s.names, p.Name)
	}

	for _, p := range parts {
		for _, dep := range p.DependencyNames() {
			if _, ok := s.byName[dep]; !ok {
				return nil, &perrors.InvalidPartNameError{PartName: dep}
			}
		}
	}

	return s, nil
}

// Get returns the part named name, and whether it was found.
func (s *Set) Get(name string) (Part, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Len returns the number of parts in the set.
func (s *Set) Len() int { return len(s.byName) }

// All returns every part, sorted by name for deterministic iteration.
func (s *Set) All() []Part {
	out := make([]Part, 0, len(s.byName))
	for _, name := range s.sortedNames() {
		out = append(out, s.byName[name])
	}
	return out
}

func (s *Set) sortedNames() []string {
	names := append([]string(nil), s.names...)
	sort.Strings(names)
	return names
}

// Dependencies returns the immediate (non-recursive) dependencies of
// partName, or *perrors.InvalidPartNameError if partName is unknown.
func (s *Set) Dependencies(partName string) ([]Part, error) {
	p, ok := s.byName[partName]
	if !ok {
		return nil, &perrors.InvalidPartNameError{PartName: partName}
	}

	var out []Part
	for _, name := range p.DependencyNames() {
		dep, ok := s.byName[name]
		if !ok {
			return nil, &perrors.InvalidPartNameError{PartName: name}
		}
		out = append(out, dep)
	}
	return out, nil
}

// RecursiveDependencies returns the full transitive dependency closure of
// partName, deduplicated and sorted by name. The `after` graph is assumed
// acyclic (callers validate with TopoSort before relying on this).
func (s *Set) RecursiveDependencies(partName string) ([]Part, error) {
	seen := map[string]bool{}
	var walk func(name string) error
	var out []Part

	walk = func(name string) error {
		p, ok := s.byName[name]
		if !ok {
			return &perrors.InvalidPartNameError{PartName: name}
		}
		for _, depName := range p.DependencyNames() {
			if seen[depName] {
				continue
			}
			seen[depName] = true
			dep, ok := s.byName[depName]
			if !ok {
				return &perrors.InvalidPartNameError{PartName: depName}
			}
			out = append(out, dep)
			if err := walk(depName); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(partName); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
