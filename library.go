package main

import (
	"context"
	"fmt"

	"github.com/meridian-scm/docrag/docstore"
)

const previewChars = 100

// DocumentInfo is one library entry, one per ingested source file.
type DocumentInfo struct {
	ID         string
	Name       string
	Type       string
	UploadedAt string
	Preview    string
}

// Library lists ingested documents for inventory views, deduplicated by file
// name by the index.
type Library struct {
	index docstore.Index
}

func (l *Library) ListDocuments(ctx context.Context, limit int) ([]DocumentInfo, error) {
	records, err := l.index.ListAll(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	docs := make([]DocumentInfo, 0, len(records))
	for _, rec := range records {
		info := DocumentInfo{ID: rec.ID}

		info.Name, _ = rec.Metadata[docstore.KeyFileName].(string)
		if info.Name == "" {
			info.Name = "Unknown Document"
		}
		info.Type, _ = rec.Metadata[docstore.KeyFileType].(string)
		info.UploadedAt, _ = rec.Metadata[docstore.KeyUploadedAt].(string)

		if text, _ := rec.Metadata[docstore.KeyText].(string); text != "" {
			info.Preview = truncate(text, previewChars)
		}

		docs = append(docs, info)
	}

	return docs, nil
}
