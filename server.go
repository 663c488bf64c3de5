package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meridian-scm/docrag/docstore"
)

type documentIngester interface {
	Ingest(ctx context.Context, path string, meta map[string]any) (int, error)
}

type queryAnswerer interface {
	Answer(ctx context.Context, query string, topK int) (Answer, error)
}

type libraryLister interface {
	ListDocuments(ctx context.Context, limit int) ([]DocumentInfo, error)
}

// NewDocServer exposes the retrieval subsystem over MCP: ingest, answer,
// library listing and per-document removal.
func NewDocServer(ing documentIngester, qe queryAnswerer, lib libraryLister, index docstore.Index) *server.MCPServer {
	srv := server.NewMCPServer("SCM Docs", "0.1.0", server.WithToolCapabilities(false))

	ingestTool := mcp.NewTool("ingest_document",
		mcp.WithDescription("Ingest a document into the searchable index, returning the number of chunks stored"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document file"),
		),
		mcp.WithString("metadata",
			mcp.Description("Optional JSON object with extra metadata to attach to every chunk"),
		))
	srv.AddTool(ingestTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, err := request.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var meta map[string]any
		if raw := request.GetString("metadata", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &meta); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid metadata: %s", err)), nil
			}
		}

		count, err := ing.Ingest(ctx, path, meta)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("stored %d chunks", count)), nil
	})

	queryTool := mcp.NewTool("query_documents",
		mcp.WithDescription("Answer a question from the ingested documents, with ranked sources"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language question"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("How many results to retrieve"),
		))
	srv.AddTool(queryTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q, err := request.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		answer, err := qe.Answer(ctx, q, request.GetInt("top_k", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		type source struct {
			ID       string         `json:"id"`
			Score    float32        `json:"score"`
			Metadata map[string]any `json:"metadata"`
		}
		sources := make([]source, 0, len(answer.Sources))
		for _, s := range answer.Sources {
			sources = append(sources, source{ID: s.ID, Score: s.Score, Metadata: s.Metadata})
		}

		raw, err := json.Marshal(struct {
			Answer  string   `json:"answer"`
			Sources []source `json:"sources"`
		}{
			Answer:  answer.Answer,
			Sources: sources,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(raw)), nil
	})

	listTool := mcp.NewTool("list_documents",
		mcp.WithDescription("List ingested documents, one entry per source file"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of documents to return"),
		))
	srv.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs, err := lib.ListDocuments(ctx, request.GetInt("limit", 0))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		type entry struct {
			ID         string `json:"id"`
			Name       string `json:"name"`
			Type       string `json:"type"`
			UploadedAt string `json:"uploaded_at"`
			Preview    string `json:"preview"`
		}
		entries := make([]entry, 0, len(docs))
		for _, d := range docs {
			entries = append(entries, entry{
				ID:         d.ID,
				Name:       d.Name,
				Type:       d.Type,
				UploadedAt: d.UploadedAt,
				Preview:    d.Preview,
			})
		}

		raw, err := json.Marshal(entries)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(string(raw)), nil
	})

	deleteTool := mcp.NewTool("delete_document",
		mcp.WithDescription("Remove every indexed chunk belonging to a source file"),
		mcp.WithString("file_name",
			mcp.Required(),
			mcp.Description("File name as shown by list_documents"),
		))
	srv.AddTool(deleteTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("file_name")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := index.DeleteSource(ctx, name); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("removed %s", name)), nil
	})

	return srv
}
