package docstore

import (
	"context"
	"errors"
)

// ErrBackendUnavailable marks a remote backend that could not be reached or
// configured at construction time. Open catches it and degrades to the local
// index; it is never returned to callers of the Index contract.
var ErrBackendUnavailable = errors.New("vector backend unavailable")

// Index is the similarity-search contract shared by the remote and local
// backends. Callers depend only on this interface; which backend serves it is
// decided once, at Open.
type Index interface {
	// Upsert inserts or overwrites the record with the given id.
	Upsert(ctx context.Context, id string, vector []float32, meta map[string]any) error

	// Query returns up to topK results sorted by descending similarity.
	// Ties keep insertion order so repeated queries are deterministic.
	Query(ctx context.Context, vector []float32, topK int) ([]SearchResult, error)

	// Delete removes a record. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// DeleteSource removes every record whose file_name metadata matches.
	DeleteSource(ctx context.Context, fileName string) error

	// ListAll enumerates up to limit records, keeping only the first record
	// seen per file_name so library views show one entry per document.
	ListAll(ctx context.Context, limit int) ([]Record, error)

	Stats(ctx context.Context) (Stats, error)
}
