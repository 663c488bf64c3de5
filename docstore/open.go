package docstore

import (
	"context"
	"log/slog"
)

// Open selects the backend once. It attempts the remote index whenever a
// Chroma URL is configured and degrades permanently to the local index when
// construction fails, so ingestion and query keep working offline. The
// returned Mode is informational only.
func Open(ctx context.Context, log *slog.Logger, cfg ChromaConfig) (Index, Mode) {
	if cfg.BaseURL == "" {
		log.Info("no remote backend configured, using local vector index")
		return NewLocalIndex(), ModeLocal
	}

	remote, err := NewChromaIndex(ctx, cfg)
	if err != nil {
		log.Warn("remote vector backend unavailable, falling back to local index", "error", err)
		return NewLocalIndex(), ModeLocal
	}

	log.Info("connected to remote vector backend", "url", cfg.BaseURL, "collection", cfg.Collection)
	return newFailoverIndex(log, remote), ModeRemote
}
