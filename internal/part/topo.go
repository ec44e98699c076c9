package part

import (
	"sort"

	"github.com/cmatsuoka/partbuilder/pkg/perrors"
)

// TopoSort orders parts so that every part appears after everything it
// depends on (via `after`), breaking ties by repeatedly pulling the
// remaining part with the greatest name that nothing else still mentions,
// then prepending it to the result. This mirrors the reverse-alphabetical
// insertion-order queue that original_source's sort_parts uses: it keeps
// the algorithm deterministic without requiring a separate stable-sort
// pass over ties.
//
// Returns a *perrors.DependencyCycleError, naming one part on the cycle,
// if no progress can be made.
func TopoSort(parts []Part) ([]Part, error) {
	remaining := make(map[string]Part, len(parts))
	for _, p := range parts {
		remaining[p.Name] = p
	}

	mentioned := func(excluding string) map[string]bool {
		m := map[string]bool{}
		for name, p := range remaining {
			if name == excluding {
				continue
			}
			for _, dep := range p.DependencyNames() {
				m[dep] = true
			}
		}
		return m
	}

	var ordered []Part

	for len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(names)))

		var topName string
		found := false
		for _, name := range names {
			refs := mentioned(name)
			topName = name
			if !refs[name] {
				found = true
				break
			}
		}

		if !found {
			// Nothing could be removed: every remaining part is mentioned by
			// some other remaining part. Witness is the last part considered,
			// matching the source's loop-without-break fallthrough.
			return nil, &perrors.DependencyCycleError{PartName: topName}
		}

		p := remaining[topName]
		delete(remaining, topName)
		ordered = append([]Part{p}, ordered...)
	}

	return ordered, nil
}
