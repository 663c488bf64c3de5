package docstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LocalIndex_UpsertIsIdempotent(t *testing.T) {
	ix := NewLocalIndex()
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, "r1", []float32{1, 0}, map[string]any{KeyText: "first"}))
	require.NoError(t, ix.Upsert(ctx, "r1", []float32{0, 1}, map[string]any{KeyText: "second"}))

	stats, err := ix.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)

	res, err := ix.Query(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "r1", res[0].ID)
	assert.Equal(t, "second", res[0].Metadata[KeyText])
}

func Test_LocalIndex_QueryOrdering(t *testing.T) {
	ix := NewLocalIndex()
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, "far", []float32{0, 1}, nil))
	require.NoError(t, ix.Upsert(ctx, "near", []float32{1, 0}, nil))
	require.NoError(t, ix.Upsert(ctx, "mid", []float32{1, 1}, nil))

	res, err := ix.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, "near", res[0].ID)
	assert.Equal(t, "mid", res[1].ID)
	assert.Equal(t, "far", res[2].ID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-6)
}

func Test_LocalIndex_QueryIsDeterministic(t *testing.T) {
	ix := NewLocalIndex()
	ctx := context.Background()

	// Identical vectors tie on score; insertion order breaks the tie.
	require.NoError(t, ix.Upsert(ctx, "a", []float32{1, 2}, nil))
	require.NoError(t, ix.Upsert(ctx, "b", []float32{1, 2}, nil))
	require.NoError(t, ix.Upsert(ctx, "c", []float32{1, 2}, nil))

	first, err := ix.Query(ctx, []float32{2, 1}, 3)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := ix.Query(ctx, []float32{2, 1}, 3)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	assert.Equal(t, "a", first[0].ID)
	assert.Equal(t, "b", first[1].ID)
	assert.Equal(t, "c", first[2].ID)
}

func Test_LocalIndex_QueryEmpty(t *testing.T) {
	ix := NewLocalIndex()

	res, err := ix.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func Test_LocalIndex_QueryRoundTrip(t *testing.T) {
	ix := NewLocalIndex()
	ctx := context.Background()

	vec := []float32{0.3, -0.2, 0.9}
	require.NoError(t, ix.Upsert(ctx, "only", vec, map[string]any{KeyText: "the one chunk"}))

	res, err := ix.Query(ctx, vec, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "only", res[0].ID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-6)
}

func Test_LocalIndex_DimensionMismatch(t *testing.T) {
	ix := NewLocalIndex()
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, "a", []float32{1, 2, 3}, nil))
	assert.Error(t, ix.Upsert(ctx, "b", []float32{1, 2}, nil))
}

func Test_LocalIndex_DeleteAbsentIsNoop(t *testing.T) {
	ix := NewLocalIndex()
	ctx := context.Background()

	require.NoError(t, ix.Delete(ctx, "missing"))

	require.NoError(t, ix.Upsert(ctx, "a", []float32{1}, nil))
	require.NoError(t, ix.Upsert(ctx, "b", []float32{2}, nil))
	require.NoError(t, ix.Delete(ctx, "a"))

	stats, err := ix.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)

	res, err := ix.Query(ctx, []float32{1}, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "b", res[0].ID)
}

func Test_LocalIndex_DeleteSource(t *testing.T) {
	ix := NewLocalIndex()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("report-%d", i)
		require.NoError(t, ix.Upsert(ctx, id, []float32{float32(i)}, map[string]any{KeyFileName: "report.pdf"}))
	}
	require.NoError(t, ix.Upsert(ctx, "other", []float32{9}, map[string]any{KeyFileName: "other.txt"}))

	require.NoError(t, ix.DeleteSource(ctx, "report.pdf"))

	stats, err := ix.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Count)

	recs, err := ix.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "other", recs[0].ID)
}

func Test_LocalIndex_ListAllDeduplicates(t *testing.T) {
	ix := NewLocalIndex()
	ctx := context.Background()

	meta := func(file, text string) map[string]any {
		return map[string]any{KeyFileName: file, KeyText: text}
	}

	require.NoError(t, ix.Upsert(ctx, "a0", []float32{1}, meta("a.txt", "a first")))
	require.NoError(t, ix.Upsert(ctx, "a1", []float32{2}, meta("a.txt", "a second")))
	require.NoError(t, ix.Upsert(ctx, "b0", []float32{3}, meta("b.txt", "b first")))

	recs, err := ix.ListAll(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a0", recs[0].ID)
	assert.Equal(t, "a first", recs[0].Metadata[KeyText])
	assert.Equal(t, "b0", recs[1].ID)

	limited, err := ix.ListAll(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
