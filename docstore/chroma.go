package docstore

import (
	"context"
	"fmt"
	"time"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

// ChromaIndex delegates similarity search to a Chroma server. The backing
// collection is created lazily with cosine space and the embedder's dimension,
// and polled until it answers before the first write.
type ChromaIndex struct {
	col       chroma.Collection
	dimension int
}

type ChromaConfig struct {
	BaseURL    string
	Collection string
	Dimension  int
	// ReadyTimeout bounds the readiness poll after collection creation.
	ReadyTimeout time.Duration
}

func NewChromaIndex(ctx context.Context, cfg ChromaConfig) (*ChromaIndex, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: no chroma url configured", ErrBackendUnavailable)
	}
	if cfg.ReadyTimeout == 0 {
		cfg.ReadyTimeout = 30 * time.Second
	}

	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	col, err := client.GetOrCreateCollection(ctx, cfg.Collection,
		chroma.WithCollectionMetadataCreate(chroma.NewMetadata(
			chroma.NewStringAttribute("hnsw:space", "cosine"),
			chroma.NewIntAttribute("dimension", int64(cfg.Dimension)),
		)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	ix := &ChromaIndex{col: col, dimension: cfg.Dimension}
	if err := ix.waitReady(ctx, cfg.ReadyTimeout); err != nil {
		return nil, err
	}

	return ix, nil
}

// waitReady polls the collection until it answers a count request, so the
// first upsert does not race collection creation.
func (ix *ChromaIndex) waitReady(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		_, err := ix.col.Count(ctx)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: collection not ready: %v", ErrBackendUnavailable, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, ctx.Err())
		case <-time.After(time.Second):
		}
	}
}

func (ix *ChromaIndex) Upsert(ctx context.Context, id string, vector []float32, meta map[string]any) error {
	if len(vector) != ix.dimension {
		return fmt.Errorf("vector dimension %d does not match collection dimension %d", len(vector), ix.dimension)
	}

	text, _ := meta[KeyText].(string)
	err := ix.col.Upsert(ctx,
		chroma.WithIDs(chroma.DocumentID(id)),
		chroma.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chroma.WithTexts(text),
		chroma.WithMetadatas(toDocumentMetadata(meta)),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert record %s: %w", id, err)
	}

	return nil
}

func (ix *ChromaIndex) Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		return []SearchResult{}, nil
	}

	qr, err := ix.col.Query(ctx,
		chroma.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chroma.WithNResults(topK),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	idGroups := qr.GetIDGroups()
	metaGroups := qr.GetMetadatasGroups()
	distGroups := qr.GetDistancesGroups()
	if len(idGroups) == 0 {
		return []SearchResult{}, nil
	}

	ids := idGroups[0]
	res := make([]SearchResult, 0, len(ids))
	for i := range ids {
		var meta map[string]any
		if i < len(metaGroups[0]) {
			meta = fromDocumentMetadata(metaGroups[0][i])
		}

		// Chroma reports cosine distance; flip it so higher means more
		// similar, matching the local backend's ordering.
		var score float32
		if i < len(distGroups[0]) {
			score = 1 - float32(distGroups[0][i])
		}

		res = append(res, SearchResult{ID: string(ids[i]), Score: score, Metadata: meta})
	}

	return res, nil
}

func (ix *ChromaIndex) Delete(ctx context.Context, id string) error {
	err := ix.col.Delete(ctx, chroma.WithIDsDelete(chroma.DocumentID(id)))
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}

	return nil
}

func (ix *ChromaIndex) DeleteSource(ctx context.Context, fileName string) error {
	err := ix.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(KeyFileName, fileName)))
	if err != nil {
		return fmt.Errorf("failed to delete records for %s: %w", fileName, err)
	}

	return nil
}

func (ix *ChromaIndex) ListAll(ctx context.Context, limit int) ([]Record, error) {
	opts := []chroma.CollectionGetOption{}
	if limit > 0 {
		opts = append(opts, chroma.WithLimitGet(limit))
	}

	gr, err := ix.col.Get(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	ids := gr.GetIDs()
	metas := gr.GetMetadatas()

	seen := make(map[string]struct{})
	var out []Record
	for i := range ids {
		var meta map[string]any
		if i < len(metas) {
			meta = fromDocumentMetadata(metas[i])
		}

		name, _ := meta[KeyFileName].(string)
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		out = append(out, Record{ID: string(ids[i]), Metadata: meta})
	}

	return out, nil
}

func (ix *ChromaIndex) Stats(ctx context.Context) (Stats, error) {
	count, err := ix.col.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count records: %w", err)
	}

	return Stats{Count: count, Dimension: ix.dimension}, nil
}
