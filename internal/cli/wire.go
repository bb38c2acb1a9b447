package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"rag/config"
	"rag/internal/adapter/embedding"
	"rag/internal/adapter/llm"
	"rag/internal/adapter/vectorindex/bolt"
	"rag/internal/adapter/vectorindex/memory"
	"rag/internal/adapter/vectorindex/pinecone"
	"rag/internal/port"
	"rag/internal/usecase"
)

// buildEmbedder constructs the configured embedding client.
func buildEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "gemini":
		return embedding.NewGeminiEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// buildIndexProvider constructs the configured vector index provider. The
// returned closer is a no-op for providers without local state.
func buildIndexProvider(cfg *config.Config, rootDir string) (port.VectorIndex, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Index.Provider {
	case "pinecone":
		p, err := pinecone.New(pinecone.Config{
			APIKeyEnv: cfg.Index.Pinecone.APIKeyEnv,
			Cloud:     cfg.Index.Pinecone.Cloud,
			Region:    cfg.Index.Pinecone.Region,
		})
		if err != nil {
			return nil, nil, err
		}
		return p, noop, nil
	case "bolt":
		path := cfg.Index.Bolt.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootDir, path)
		}
		p, err := bolt.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "memory":
		return memory.New(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported index provider: %s", cfg.Index.Provider)
	}
}

func buildAdmin(cfg *config.Config, provider port.VectorIndex) *usecase.IndexAdmin {
	return usecase.NewIndexAdmin(
		provider,
		time.Duration(cfg.Index.PollIntervalSecs)*time.Second,
		time.Duration(cfg.Index.ReadyTimeoutSecs)*time.Second,
		time.Duration(cfg.Index.SettleSecs)*time.Second,
	)
}

func buildLLM(cfg *config.Config) (port.LLM, error) {
	return llm.NewGeminiLLM(cfg.Answer.APIKeyEnv, cfg.Answer.Model)
}
