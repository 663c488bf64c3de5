package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/meridian-scm/docrag/docstore"
	"github.com/meridian-scm/docrag/readers"
)

type ingester interface {
	Ingest(ctx context.Context, path string, meta map[string]any) (int, error)
}

// UploadRegistry keeps the vector index in sync with an upload directory:
// new or changed files are re-ingested, removed files are forgotten. Change
// detection compares a CRC of the extracted text against the file_crc
// metadata the pipeline stores with every chunk.
type UploadRegistry struct {
	log              *slog.Logger
	root             string
	readers          *readers.Registry
	ingest           ingester
	index            docstore.Index
	mergeEventsDelay time.Duration
}

type diskDoc struct {
	path string
	crc  uint32
}

// Sync reconciles the upload root against the index. A document that fails
// to read or ingest is logged and skipped; it never aborts the rest of the
// sync.
func (ur *UploadRegistry) Sync(ctx context.Context) error {
	disk, err := ur.collectDocs()
	if err != nil {
		return err
	}

	indexed, err := ur.indexedCrcs(ctx)
	if err != nil {
		return err
	}

	for name, doc := range disk {
		if crc, ok := indexed[name]; ok && crc == doc.crc {
			continue
		}

		// Drop stale chunks before re-ingesting a changed file.
		if err := ur.index.DeleteSource(ctx, name); err != nil {
			ur.log.Warn("failed to remove stale records", "file", name, "error", err)
		}
		if _, err := ur.ingest.Ingest(ctx, doc.path, nil); err != nil {
			ur.log.Warn("failed to ingest document", "file", name, "error", err)
		}
	}

	for name := range indexed {
		if _, ok := disk[name]; ok {
			continue
		}

		if err := ur.index.DeleteSource(ctx, name); err != nil {
			return fmt.Errorf("failed to remove document %s from index: %w", name, err)
		}
	}

	return nil
}

// Watch re-syncs on file system changes, merging bursts of events into one
// sync after a quiet period. Blocks until the context is done.
func (ur *UploadRegistry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(ur.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", ur.root, err)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(ur.mergeEventsDelay, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			ur.log.Warn("watcher error", "error", err)

		case <-pending:
			if err := ur.Sync(ctx); err != nil {
				ur.log.Warn("sync failed", "error", err)
			}
		}
	}
}

// collectDocs keys documents by base name to match the file_name metadata the
// index deduplicates on. Two files sharing a name under different
// subdirectories therefore collapse into one entry, last walked wins.
func (ur *UploadRegistry) collectDocs() (map[string]diskDoc, error) {
	docs := make(map[string]diskDoc)
	err := filepath.Walk(ur.root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !ur.readers.Supported(path) {
			return nil
		}

		text, err := ur.readers.Extract(path)
		if err != nil {
			ur.log.Warn("failed to read document", "path", path, "error", err)
			return nil
		}

		docs[filepath.Base(path)] = diskDoc{
			path: path,
			crc:  crc32.Checksum([]byte(text), crc32.IEEETable),
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan upload root: %w", err)
	}

	return docs, nil
}

func (ur *UploadRegistry) indexedCrcs(ctx context.Context) (map[string]uint32, error) {
	records, err := ur.index.ListAll(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed documents: %w", err)
	}

	crcs := make(map[string]uint32, len(records))
	for _, rec := range records {
		name, _ := rec.Metadata[docstore.KeyFileName].(string)
		if name == "" {
			continue
		}

		switch crc := rec.Metadata[docstore.KeyFileCrc].(type) {
		case int64:
			crcs[name] = uint32(crc)
		case uint32:
			crcs[name] = crc
		case float64:
			crcs[name] = uint32(crc)
		}
	}

	return crcs, nil
}
