package main

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-scm/docrag/docstore"
	"github.com/meridian-scm/docrag/embed"
	"github.com/meridian-scm/docrag/readers"
)

// Chunker splits text into the windows that get embedded and stored.
type Chunker interface {
	Chunkify(text string) []string
}

// Ingestor composes extraction, chunking, embedding and storage into the
// document ingestion pipeline. It holds no state beyond its collaborators;
// every call is independent.
type Ingestor struct {
	log      *slog.Logger
	readers  *readers.Registry
	chunker  Chunker
	embedder embed.Embedder
	index    docstore.Index
}

// Ingest stores one document as embedded chunks and returns how many were
// stored. Unsupported file types and empty documents are skipped with a zero
// count, not an error. Each chunk gets a fresh id; re-ingesting a file
// produces new records, and deduplication stays a retrieval-time concern.
func (ing *Ingestor) Ingest(ctx context.Context, path string, meta map[string]any) (int, error) {
	if !ing.readers.Supported(path) {
		ing.log.Warn("skipping unsupported file", "path", path)
		return 0, nil
	}

	text, err := ing.readers.Extract(path)
	if err != nil {
		if errors.Is(err, readers.ErrUnsupportedType) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to extract %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		ing.log.Info("document produced no text", "path", path)
		return 0, nil
	}

	chunks := ing.chunker.Chunkify(text)
	if len(chunks) == 0 {
		return 0, nil
	}

	vectors, err := ing.embedder.EmbedBatch(chunks)
	if err != nil {
		return 0, fmt.Errorf("failed to embed %s: %w", path, err)
	}

	crc := crc32.Checksum([]byte(text), crc32.IEEETable)
	uploadedAt := time.Now().UTC().Format(time.RFC3339)
	fileName := filepath.Base(path)
	fileType := strings.ToLower(filepath.Ext(path))

	for i, chunk := range chunks {
		record := make(map[string]any, len(meta)+7)
		for k, v := range meta {
			record[k] = v
		}
		record[docstore.KeyText] = chunk
		record[docstore.KeyFileName] = fileName
		record[docstore.KeyFileType] = fileType
		record[docstore.KeyFilePath] = path
		record[docstore.KeyChunkIndex] = i
		record[docstore.KeyUploadedAt] = uploadedAt
		record[docstore.KeyFileCrc] = int64(crc)

		if err := ing.index.Upsert(ctx, uuid.NewString(), vectors[i], record); err != nil {
			return i, fmt.Errorf("failed to store chunk %d of %s: %w", i, path, err)
		}
	}

	ing.log.Info("document ingested", "file", fileName, "chunks", len(chunks))
	return len(chunks), nil
}
