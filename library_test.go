package main

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-scm/docrag/docstore"
)

func Test_ListDocuments(t *testing.T) {
	ix := docstore.NewLocalIndex()
	ctx := context.Background()

	require.NoError(t, ix.Upsert(ctx, "a0", []float32{1}, map[string]any{
		docstore.KeyFileName:   "handbook.txt",
		docstore.KeyFileType:   ".txt",
		docstore.KeyUploadedAt: "2025-03-01T12:00:00Z",
		docstore.KeyText:       strings.Repeat("safety stock ", 20),
	}))
	require.NoError(t, ix.Upsert(ctx, "a1", []float32{2}, map[string]any{
		docstore.KeyFileName: "handbook.txt",
		docstore.KeyText:     "later chunk",
	}))
	require.NoError(t, ix.Upsert(ctx, "b0", []float32{3}, nil))

	lib := &Library{index: ix}
	docs, err := lib.ListDocuments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, "a0", docs[0].ID)
	assert.Equal(t, "handbook.txt", docs[0].Name)
	assert.Equal(t, ".txt", docs[0].Type)
	assert.Equal(t, "2025-03-01T12:00:00Z", docs[0].UploadedAt)
	assert.True(t, strings.HasSuffix(docs[0].Preview, "..."))
	assert.Len(t, docs[0].Preview, previewChars+3)

	// Records without metadata still render as library entries.
	assert.Equal(t, "Unknown Document", docs[1].Name)
	assert.Empty(t, docs[1].Preview)
}

func Test_ListDocuments_PreviewKeepsValidUtf8(t *testing.T) {
	ix := docstore.NewLocalIndex()
	ctx := context.Background()

	// 2 + 50*3 bytes; the preview cut lands mid-rune without the boundary
	// backup.
	text := "xx" + strings.Repeat("界", 50)
	require.NoError(t, ix.Upsert(ctx, "a0", []float32{1}, map[string]any{
		docstore.KeyFileName: "unicode.txt",
		docstore.KeyText:     text,
	}))

	lib := &Library{index: ix}
	docs, err := lib.ListDocuments(ctx, 0)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, utf8.ValidString(docs[0].Preview))
	assert.True(t, strings.HasSuffix(docs[0].Preview, "..."))
}

func Test_ListDocuments_Empty(t *testing.T) {
	lib := &Library{index: docstore.NewLocalIndex()}

	docs, err := lib.ListDocuments(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
