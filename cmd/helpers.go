package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ziadkadry99/cyanguide/internal/config"
	"github.com/ziadkadry99/cyanguide/internal/guide"
	"github.com/ziadkadry99/cyanguide/internal/llm"
	"github.com/ziadkadry99/cyanguide/internal/progress"
	"github.com/ziadkadry99/cyanguide/internal/search"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `cyanguide init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// loadGuide returns the configured guide file, or the built-in guide.
func loadGuide(cfg *config.Config) (*guide.Guide, error) {
	if cfg.GuideFile == "" {
		return guide.Default()
	}
	g, err := guide.LoadFile(cfg.GuideFile)
	if err != nil {
		return nil, fmt.Errorf("loading guide: %w", err)
	}
	return g, nil
}

// sessionConfig is the fixed configuration every conversation is created
// with: the assistant instruction followed by the guide itself.
func sessionConfig(cfg *config.Config, g *guide.Guide) llm.SessionConfig {
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = g.SystemPrompt()
	}
	return llm.SessionConfig{
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		SystemPrompt: strings.TrimSpace(prompt) + "\n\nThe guide the user is reading:\n\n" + g.Context(),
	}
}

// createLLMProviderFromConfig creates the rate-limited chat provider.
func createLLMProviderFromConfig(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
	p, err := llm.NewProvider(ctx, string(cfg.Provider))
	if err != nil {
		return nil, err
	}
	return llm.NewRateLimitedProvider(p, cfg.Chat.RequestsPerMinute), nil
}

// createEmbedderFromConfig creates the embedder used by semantic search.
func createEmbedderFromConfig(ctx context.Context, cfg *config.Config) (search.Embedder, error) {
	model := cfg.EmbeddingModel()
	switch cfg.Provider {
	case config.ProviderGoogle:
		key := llm.GoogleAPIKey()
		if key == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for Gemini embeddings")
		}
		gp, err := llm.NewGoogleProvider(ctx, key)
		if err != nil {
			return nil, err
		}
		return search.NewGoogleEmbedder(gp.GenAI(), model), nil
	case config.ProviderOpenAI:
		key := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for OpenAI embeddings")
		}
		return search.NewOpenAIEmbedder(key, model), nil
	case config.ProviderOllama:
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return search.NewOpenAICompatibleEmbedder(strings.TrimRight(host, "/")+"/v1", "ollama", model), nil
	default:
		return search.HashEmbedder{}, nil
	}
}

// createSearcher returns a keyword searcher, upgraded with a semantic index
// when search.semantic is enabled. Index failures fall back to keywords.
// cachePath, when set, persists embeddings between runs.
func createSearcher(ctx context.Context, cfg *config.Config, g *guide.Guide, cachePath string) *search.Searcher {
	s := search.New(g)
	if !cfg.Search.Semantic {
		return s
	}

	embedder, err := createEmbedderFromConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: semantic search disabled: %v\n", err)
		return s
	}
	index, err := search.NewIndex(embedder)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: semantic search disabled: %v\n", err)
		return s
	}
	if cachePath != "" {
		if err := index.Load(cachePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: ignoring index cache %s: %v\n", cachePath, err)
		}
	}
	index.SetReporter(progress.NewReporter("Indexing guide"))
	if err := index.Build(ctx, g); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: semantic search disabled: %v\n", err)
		return s
	}
	if cachePath != "" {
		if err := index.Persist(cachePath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not write index cache %s: %v\n", cachePath, err)
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Semantic search enabled (%d sections indexed with %s)\n", index.Count(), embedder.Name())
	}
	return s.WithIndex(index)
}
