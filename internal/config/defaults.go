package config

// defaultModels is the chat model used for each provider when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderGoogle: "gemini-2.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderOllama: "llama3",
	ProviderFake:   "fake",
}

// defaultEmbeddingModels is the embedding model used by semantic search.
var defaultEmbeddingModels = map[ProviderType]string{
	ProviderGoogle: "text-embedding-004",
	ProviderOpenAI: "text-embedding-3-small",
	ProviderOllama: "nomic-embed-text",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGoogle,
		Model:       defaultModels[ProviderGoogle],
		Temperature: 0.3,
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			MaxSessions: 256,
		},
		Chat: ChatConfig{
			RequestsPerMinute: 30,
			RequestTimeout:    "2m",
		},
	}
}

// DefaultModel returns the chat model for the given provider.
func DefaultModel(p ProviderType) string {
	return defaultModels[p]
}

// DefaultEmbeddingModel returns the embedding model for the given provider,
// or "" when the provider has no embedding endpoint.
func DefaultEmbeddingModel(p ProviderType) string {
	return defaultEmbeddingModels[p]
}
