package docstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// LocalIndex is the in-process fallback: an exact linear-scan cosine
// similarity search over all stored vectors. Records are kept in insertion
// order, which is also the tie-break order for equal scores. A single mutex
// serializes all access; this is the only shared mutable state in the
// subsystem.
type LocalIndex struct {
	mu        sync.Mutex
	dimension int
	records   []Record
	byID      map[string]int
}

func NewLocalIndex() *LocalIndex {
	return &LocalIndex{byID: make(map[string]int)}
}

func (ix *LocalIndex) Upsert(ctx context.Context, id string, vector []float32, meta map[string]any) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.dimension == 0 {
		ix.dimension = len(vector)
	}
	if len(vector) != ix.dimension {
		return fmt.Errorf("vector dimension %d does not match index dimension %d", len(vector), ix.dimension)
	}

	rec := Record{ID: id, Vector: vector, Metadata: meta}
	if i, ok := ix.byID[id]; ok {
		ix.records[i] = rec
		return nil
	}

	ix.byID[id] = len(ix.records)
	ix.records = append(ix.records, rec)
	return nil
}

func (ix *LocalIndex) Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if topK <= 0 || len(ix.records) == 0 {
		return []SearchResult{}, nil
	}

	res := make([]SearchResult, 0, len(ix.records))
	for _, rec := range ix.records {
		res = append(res, SearchResult{
			ID:       rec.ID,
			Score:    cosineSimilarity(vector, rec.Vector),
			Metadata: rec.Metadata,
		})
	}

	sort.SliceStable(res, func(i, j int) bool { return res[i].Score > res[j].Score })
	if topK < len(res) {
		res = res[:topK]
	}

	return res, nil
}

func (ix *LocalIndex) Delete(ctx context.Context, id string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	i, ok := ix.byID[id]
	if !ok {
		return nil
	}

	ix.records = append(ix.records[:i], ix.records[i+1:]...)
	delete(ix.byID, id)
	for j := i; j < len(ix.records); j++ {
		ix.byID[ix.records[j].ID] = j
	}

	return nil
}

func (ix *LocalIndex) DeleteSource(ctx context.Context, fileName string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := ix.records[:0]
	for _, rec := range ix.records {
		if name, _ := rec.Metadata[KeyFileName].(string); name == fileName {
			delete(ix.byID, rec.ID)
			continue
		}
		kept = append(kept, rec)
	}

	ix.records = kept
	for j, rec := range ix.records {
		ix.byID[rec.ID] = j
	}

	return nil
}

func (ix *LocalIndex) ListAll(ctx context.Context, limit int) ([]Record, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	seen := make(map[string]struct{})
	var out []Record
	for _, rec := range ix.records {
		if limit > 0 && len(out) >= limit {
			break
		}

		name, _ := rec.Metadata[KeyFileName].(string)
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		out = append(out, rec)
	}

	return out, nil
}

func (ix *LocalIndex) Stats(ctx context.Context) (Stats, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	return Stats{Count: len(ix.records), Dimension: ix.dimension}, nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}
