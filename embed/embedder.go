// Package embed turns text into fixed-dimension embedding vectors.
package embed

import "errors"

// ErrUnavailable marks an embedding model that could not be loaded or run
// even after retrying on the safe execution path.
var ErrUnavailable = errors.New("embedding model unavailable")

// Embedder produces vectors of a single fixed dimension for its whole
// lifetime. EmbedBatch preserves input order and is preferred for throughput;
// implementations degrade to per-item embedding before failing a batch.
type Embedder interface {
	Embed(text string) ([]float32, error)
	EmbedBatch(texts []string) ([][]float32, error)
	Dimension() int
	Close() error
}
