package statepg

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmatsuoka/partbuilder/internal/state"
	"github.com/cmatsuoka/partbuilder/internal/step"
)

// These tests exercise the real adapter against a live Postgres instance
// and are skipped unless PARTBUILDER_TEST_DATABASE_URL is set, matching
// the raw migration engine's env-gated integration style.
func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv("PARTBUILDER_TEST_DATABASE_URL")
	if v == "" {
		t.Skip("PARTBUILDER_TEST_DATABASE_URL not set, skipping Postgres integration test")
	}
	return v
}

func TestAdapterSaveThenLoadRoundTrips(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, dsn(t))
	require.NoError(t, err)
	defer a.Close()

	want := state.PartState{
		Timestamp:                99,
		PropertiesOfInterest:     map[string]any{"source": "git"},
		ProjectOptionsOfInterest: map[string]any{"target_arch": "amd64"},
	}
	require.NoError(t, a.Save("foo", step.Stage, want))

	got, err := a.Load("foo", step.Stage)
	require.NoError(t, err)
	require.EqualValues(t, want.Timestamp, got.Timestamp)

	require.NoError(t, a.Remove("foo", step.Stage))
}

func TestAdapterLoadAbsentReturnsZeroTimestamp(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, dsn(t))
	require.NoError(t, err)
	defer a.Close()

	got, err := a.Load("nonexistent-part", step.Prime)
	require.NoError(t, err)
	require.True(t, got.Absent())
}
