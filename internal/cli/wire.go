package cli

import (
	"fmt"

	"ragstore/config"
	"ragstore/internal/adapter/embedding"
	"ragstore/internal/adapter/memstore"
	"ragstore/internal/adapter/qdrant"
	"ragstore/internal/adapter/store"
	"ragstore/internal/port"
	"ragstore/internal/usecase"
)

// buildStore constructs the configured vector store backend. The
// returned cleanup closes backends that hold resources.
func buildStore(cfg *config.Config) (port.VectorStore, func(), error) {
	switch cfg.Store.Type {
	case "qdrant":
		s := qdrant.NewStore(qdrant.Config{
			URL:        cfg.Store.Qdrant.URL,
			APIKey:     cfg.Store.Qdrant.APIKey,
			Collection: cfg.Store.Qdrant.Collection,
			Timeout:    cfg.QdrantTimeout(),
		})
		return s, func() {}, nil
	case "bolt":
		s, err := store.NewBoltVectorStore(cfg.Store.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	case "memory":
		return memstore.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type: %s", cfg.Store.Type)
	}
}

// buildEmbedder constructs the lazily-initialized embedder. The model
// endpoint is not contacted until the first embed (or Ready call).
func buildEmbedder(cfg *config.Config) (*embedding.Lazy, error) {
	switch cfg.Embedding.Provider {
	case "openai", "ollama":
		opts := embedding.Options{
			BaseURL:   cfg.Embedding.BaseURL,
			Model:     cfg.Embedding.Model,
			APIKeyEnv: cfg.Embedding.APIKeyEnv,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   cfg.EmbeddingTimeout(),
		}
		return embedding.NewLazy(func() (port.Embedder, error) {
			return embedding.NewOpenAIEmbedder(opts)
		}), nil
	case "mock":
		dim := cfg.Embedding.Dimension
		return embedding.NewLazy(func() (port.Embedder, error) {
			return embedding.NewMockEmbedder(dim), nil
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}

// buildService wires the full stack: store, embedder, and orchestrator.
func buildService(cfg *config.Config) (*usecase.EmbeddingService, *embedding.Lazy, port.VectorStore, func(), error) {
	st, cleanup, err := buildStore(cfg)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to build store: %w", err)
	}
	emb, err := buildEmbedder(cfg)
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, fmt.Errorf("failed to build embedder: %w", err)
	}
	svc := usecase.NewEmbeddingService(emb, st, cfg.Retrieve.ScoreThreshold, cfg.Retrieve.MaxTopK)
	return svc, emb, st, cleanup, nil
}
