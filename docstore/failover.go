package docstore

import (
	"context"
	"log/slog"
)

// failoverIndex fronts the remote backend with a local shadow. Remote
// failures after construction degrade the single call, never the caller: a
// failed remote upsert lands in the shadow and a failed remote query is
// answered from whatever the shadow holds.
type failoverIndex struct {
	log    *slog.Logger
	remote Index
	shadow *LocalIndex
}

func newFailoverIndex(log *slog.Logger, remote Index) *failoverIndex {
	return &failoverIndex{log: log, remote: remote, shadow: NewLocalIndex()}
}

func (f *failoverIndex) Upsert(ctx context.Context, id string, vector []float32, meta map[string]any) error {
	if err := f.remote.Upsert(ctx, id, vector, meta); err != nil {
		f.log.Warn("remote upsert failed, storing locally", "id", id, "error", err)
		return f.shadow.Upsert(ctx, id, vector, meta)
	}

	return nil
}

func (f *failoverIndex) Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	res, err := f.remote.Query(ctx, vector, topK)
	if err != nil {
		f.log.Warn("remote query failed, searching locally", "error", err)
		return f.shadow.Query(ctx, vector, topK)
	}

	return res, nil
}

func (f *failoverIndex) Delete(ctx context.Context, id string) error {
	// The shadow may hold the record if its upsert failed over.
	_ = f.shadow.Delete(ctx, id)

	if err := f.remote.Delete(ctx, id); err != nil {
		f.log.Warn("remote delete failed", "id", id, "error", err)
	}

	return nil
}

func (f *failoverIndex) DeleteSource(ctx context.Context, fileName string) error {
	_ = f.shadow.DeleteSource(ctx, fileName)

	if err := f.remote.DeleteSource(ctx, fileName); err != nil {
		f.log.Warn("remote delete failed", "file", fileName, "error", err)
	}

	return nil
}

func (f *failoverIndex) ListAll(ctx context.Context, limit int) ([]Record, error) {
	recs, err := f.remote.ListAll(ctx, limit)
	if err != nil {
		f.log.Warn("remote list failed, listing locally", "error", err)
		return f.shadow.ListAll(ctx, limit)
	}

	return recs, nil
}

func (f *failoverIndex) Stats(ctx context.Context) (Stats, error) {
	stats, err := f.remote.Stats(ctx)
	if err != nil {
		f.log.Warn("remote stats failed, counting locally", "error", err)
		return f.shadow.Stats(ctx)
	}

	return stats, nil
}
