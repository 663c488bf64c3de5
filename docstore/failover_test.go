package docstore

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemoteDown = errors.New("connection refused")

// brokenIndex fails every call, standing in for an unreachable remote.
type brokenIndex struct{}

func (brokenIndex) Upsert(ctx context.Context, id string, vector []float32, meta map[string]any) error {
	return errRemoteDown
}

func (brokenIndex) Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	return nil, errRemoteDown
}

func (brokenIndex) Delete(ctx context.Context, id string) error           { return errRemoteDown }
func (brokenIndex) DeleteSource(ctx context.Context, name string) error   { return errRemoteDown }
func (brokenIndex) ListAll(ctx context.Context, limit int) ([]Record, error) {
	return nil, errRemoteDown
}
func (brokenIndex) Stats(ctx context.Context) (Stats, error) { return Stats{}, errRemoteDown }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_Failover_QueryFallsBackToShadow(t *testing.T) {
	f := newFailoverIndex(discardLogger(), brokenIndex{})
	ctx := context.Background()

	// The failed remote upsert must land in the shadow...
	require.NoError(t, f.Upsert(ctx, "r1", []float32{1, 0}, map[string]any{KeyText: "shadow copy"}))

	// ...and the failed remote query must be answered from it.
	res, err := f.Query(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "r1", res[0].ID)
	assert.Equal(t, "shadow copy", res[0].Metadata[KeyText])
}

func Test_Failover_DeleteNeverSurfacesRemoteErrors(t *testing.T) {
	f := newFailoverIndex(discardLogger(), brokenIndex{})
	ctx := context.Background()

	require.NoError(t, f.Upsert(ctx, "r1", []float32{1}, map[string]any{KeyFileName: "a.txt"}))
	require.NoError(t, f.Delete(ctx, "r1"))

	stats, err := f.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
}

func Test_Failover_ListAndStatsFallBack(t *testing.T) {
	f := newFailoverIndex(discardLogger(), brokenIndex{})
	ctx := context.Background()

	require.NoError(t, f.Upsert(ctx, "r1", []float32{1}, map[string]any{KeyFileName: "a.txt"}))
	require.NoError(t, f.DeleteSource(ctx, "a.txt"))

	recs, err := f.ListAll(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func Test_Open_FallsBackToLocalOnBadBackend(t *testing.T) {
	// Nothing listens here; construction must degrade, not fail.
	ix, mode := Open(context.Background(), discardLogger(), ChromaConfig{
		BaseURL:      "http://127.0.0.1:1",
		Collection:   "scm-documents",
		Dimension:    4,
		ReadyTimeout: 1,
	})

	assert.Equal(t, ModeLocal, mode)

	ctx := context.Background()
	require.NoError(t, ix.Upsert(ctx, "r1", []float32{1, 0, 0, 0}, map[string]any{KeyText: "still works"}))

	res, err := ix.Query(ctx, []float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "still works", res[0].Metadata[KeyText])
}

func Test_Open_NoURLSelectsLocal(t *testing.T) {
	_, mode := Open(context.Background(), discardLogger(), ChromaConfig{})
	assert.Equal(t, ModeLocal, mode)
}
