package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"

	"github.com/meridian-scm/docrag/docstore"
	"github.com/meridian-scm/docrag/embed"
	"github.com/meridian-scm/docrag/readers"
)

func createEmbedder(cfg *Config) (embed.Embedder, error) {
	switch cfg.Embedder {
	case "minilm":
		e, err := embed.NewMiniLM(cfg.EmbeddingModel, cfg.ModelsDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load embedding model: %w", err)
		}
		return e, nil

	case "ollama":
		ocfg := embed.OllamaConfig{}
		if cfg.Ollama != nil {
			ocfg.BaseURL = cfg.Ollama.URL
			ocfg.Model = cfg.Ollama.Model
			ocfg.Dimension = cfg.Ollama.Dimension
		}
		e, err := embed.NewOllama(ocfg)
		if err != nil {
			return nil, fmt.Errorf("failed to reach ollama: %w", err)
		}
		return e, nil
	}

	return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder)
}

func createLogger(cfg *Config) (*slog.Logger, func(), error) {
	if cfg.LogFile == "" {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil)), func() {}, nil
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return slog.New(slog.NewJSONHandler(logFile, nil)), func() { logFile.Close() }, nil
}

func main() {
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the document server")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, closeLog, err := createLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeLog()

	embedder, err := createEmbedder(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer embedder.Close()

	openCtx, cancelOpen := context.WithTimeout(context.Background(), 30*time.Second)
	index, mode := docstore.Open(openCtx, logger, docstore.ChromaConfig{
		BaseURL:    cfg.chromaURL(),
		Collection: cfg.chromaCollection(),
		Dimension:  embedder.Dimension(),
	})
	cancelOpen()
	logger.Info("vector index ready", "mode", mode, "dimension", embedder.Dimension())

	registry := readers.NewRegistry(cfg.MaxTextChars)
	if err := registry.Register(&readers.TxtReader{}, &readers.CsvReader{}, &readers.DocconvReader{}); err != nil {
		log.Fatal(err)
	}

	ing := &Ingestor{
		log:     logger,
		readers: registry,
		chunker: &Chunkifier{
			chunkSize:    cfg.ChunkSize,
			chunkOverlap: cfg.ChunkOverlap,
			maxChunks:    cfg.MaxChunks,
		},
		embedder: embedder,
		index:    index,
	}
	qe := &QueryEngine{
		log:      logger,
		embedder: embedder,
		index:    index,
		topK:     cfg.Results,
	}
	lib := &Library{index: index}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.UploadRoot != "" {
		uploads := &UploadRegistry{
			log:              logger,
			root:             cfg.UploadRoot,
			readers:          registry,
			ingest:           ing,
			index:            index,
			mergeEventsDelay: time.Duration(cfg.MergeEventsMs) * time.Millisecond,
		}

		go func() {
			if err := uploads.Sync(ctx); err != nil {
				logger.Error("initial sync failed", "error", err)
			}
			if err := uploads.Watch(ctx); err != nil {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	srv := NewDocServer(ing, qe, lib, index)
	sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.ServerAddr)))
	log.Println(sse.Start(cfg.ServerAddr))
}
