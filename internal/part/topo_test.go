package part

import (
	"testing"

	"github.com/cmatsuoka/partbuilder/pkg/perrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTopoSortLinearChain exercises spec Scenario 1: foo with no
// dependencies, baz after foo, bar after baz sorts to [foo, baz, bar] -- parts
// are ordered so that nothing mentioned in an `after` list precedes the
// part that names it.
func TestTopoSortLinearChain(t *testing.T) {
	parts := []Part{
		New("foo", nil, ""),
		New("bar", map[string]any{"after": []string{"baz"}}, ""),
		New("baz", map[string]any{"after": []string{"foo"}}, ""),
	}

	sorted, err := TopoSort(parts)
	require.NoError(t, err)
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"foo", "baz", "bar"}, names(sorted))
}

// TestTopoSortCycleDetection exercises spec Scenario 2: a cycle between
// bar and baz must be reported naming "bar".
func TestTopoSortCycleDetection(t *testing.T) {
	parts := []Part{
		New("foo", nil, ""),
		New("bar", map[string]any{"after": []string{"baz"}}, ""),
		New("baz", map[string]any{"after": []string{"bar"}}, ""),
	}

	_, err := TopoSort(parts)
	require.Error(t, err)
	var cycle *perrors.DependencyCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, "bar", cycle.PartName)
}

func TestTopoSortNoDependencies(t *testing.T) {
	parts := []Part{New("zeta", nil, ""), New("alpha", nil, "")}
	sorted, err := TopoSort(parts)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, names(sorted))
}

func TestTopoSortEmpty(t *testing.T) {
	sorted, err := TopoSort(nil)
	require.NoError(t, err)
	assert.Empty(t, sorted)
}

func names(parts []Part) []string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.Name
	}
	return out
}
