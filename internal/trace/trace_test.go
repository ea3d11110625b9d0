package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	return rec
}

func TestRecorder_RoundTrip(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	rules := []RuleRow{
		{Seq: 0, LHS: "b", RHS: "a", Depth: 0, Deleted: false},
		{Seq: 1, LHS: "c.d", RHS: "c", Depth: 1, Deleted: true},
	}
	id, err := rec.RecordRun(ctx, Run{
		Token:    "run-1",
		Source:   "testdata/sigs",
		Result:   "success",
		MaxIter:  100,
		MaxDepth: 10,
	}, rules)
	require.NoError(t, err)

	runs, err := rec.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "run-1", runs[0].Token)
	assert.Equal(t, "success", runs[0].Result)
	assert.Equal(t, uint32(100), runs[0].MaxIter)
	assert.NotEmpty(t, runs[0].CreatedAt)

	got, err := rec.Rules(ctx, id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rules[0], got[0])
	assert.Equal(t, rules[1], got[1])
}

func TestRecorder_MultipleRunsOrdered(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	for _, token := range []string{"run-a", "run-b", "run-c"} {
		_, err := rec.RecordRun(ctx, Run{Token: token, Source: "s", Result: "success"}, nil)
		require.NoError(t, err)
	}

	runs, err := rec.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-a", runs[0].Token)
	assert.Equal(t, "run-c", runs[2].Token)
}

func TestRecorder_DuplicateTokenRejected(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()

	_, err := rec.RecordRun(ctx, Run{Token: "dup", Source: "s", Result: "success"}, nil)
	require.NoError(t, err)

	_, err = rec.RecordRun(ctx, Run{Token: "dup", Source: "s", Result: "success"}, nil)
	assert.Error(t, err, "run tokens are unique")
}

func TestRecorder_OpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	rec, err := Open(path)
	require.NoError(t, err)
	_, err = rec.RecordRun(context.Background(), Run{Token: "kept", Source: "s", Result: "success"}, nil)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	rec2, err := Open(path)
	require.NoError(t, err)
	defer rec2.Close()

	runs, err := rec2.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "kept", runs[0].Token)
}

func TestRecorder_RulesEmptyForUnknownRun(t *testing.T) {
	rec := openTestRecorder(t)

	rules, err := rec.Rules(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, rules)
}
