package cli

import (
	"fmt"
	"os"
	"time"

	"pdfqa/config"
	"pdfqa/internal/adapter/boltstore"
	"pdfqa/internal/adapter/memstore"
	"pdfqa/internal/adapter/provider"
	"pdfqa/internal/adapter/qdrant"
	"pdfqa/internal/port"
)

// buildProvider constructs the embedding/completion provider named in
// the config.
func buildProvider(cfg *config.Config) (port.Provider, error) {
	opts := provider.Options{
		APIKeyEnv:  cfg.Provider.APIKeyEnv,
		BaseURL:    cfg.Provider.BaseURL,
		EmbedModel: cfg.Provider.EmbedModel,
		LLMModel:   cfg.Provider.LLMModel,
		Dimension:  cfg.Provider.Dimension,
		Timeout:    time.Duration(cfg.Provider.TimeoutSecs) * time.Second,
	}

	switch cfg.Provider.Type {
	case "openai":
		return provider.NewOpenAI(opts)
	case "groq":
		return provider.NewGroq(opts)
	case "openrouter":
		return provider.NewOpenRouter(opts)
	case "gemini":
		return provider.NewGemini(opts)
	case "mock":
		return provider.NewMockProvider(cfg.Provider.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Provider.Type)
	}
}

// buildStore constructs the chunk store named in the config. The
// returned cleanup is a no-op for stores without resources to release.
func buildStore(cfg *config.Config) (port.ChunkStore, func(), error) {
	switch cfg.Store.Type {
	case "qdrant":
		store := qdrant.NewStore(qdrant.Config{
			URL:       cfg.Store.Qdrant.URL,
			APIKey:    apiKeyFromEnv(cfg.Store.Qdrant.APIKeyEnv),
			Dimension: cfg.Provider.Dimension,
			Timeout:   time.Duration(cfg.Store.Qdrant.TimeoutSecs) * time.Second,
		})
		return store, func() {}, nil
	case "bolt":
		store, err := boltstore.Open(cfg.Store.Bolt.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open chunk store: %w", err)
		}
		return store, func() { store.Close() }, nil
	case "memory":
		return memstore.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
	}
}

func apiKeyFromEnv(env string) string {
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}
