package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
	ProviderFake   ProviderType = "fake"
)

// Config is the top-level cyanguide configuration, corresponding to .cyanguide.yml.
type Config struct {
	Provider     ProviderType `yaml:"provider" koanf:"provider"`
	Model        string       `yaml:"model" koanf:"model"`
	Temperature  float32      `yaml:"temperature" koanf:"temperature"`
	SystemPrompt string       `yaml:"system_prompt,omitempty" koanf:"system_prompt"`
	// GuideFile replaces the built-in guide content when set.
	GuideFile string `yaml:"guide_file,omitempty" koanf:"guide_file"`

	Server ServerConfig `yaml:"server" koanf:"server"`
	Chat   ChatConfig   `yaml:"chat" koanf:"chat"`
	Search SearchConfig `yaml:"search" koanf:"search"`
}

// ServerConfig holds settings for `cyanguide serve`.
type ServerConfig struct {
	Addr            string `yaml:"addr" koanf:"addr"`
	AllowAllOrigins bool   `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	// MaxSessions bounds the number of live conversations kept in memory.
	MaxSessions int `yaml:"max_sessions" koanf:"max_sessions"`
}

// ChatConfig holds settings shared by every chat front end.
type ChatConfig struct {
	RequestsPerMinute  int    `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	RequestTimeout     string `yaml:"request_timeout" koanf:"request_timeout"`
	KeepPartialOnError bool   `yaml:"keep_partial_on_error" koanf:"keep_partial_on_error"`
}

// SearchConfig controls the semantic guide index.
type SearchConfig struct {
	Semantic       bool   `yaml:"semantic" koanf:"semantic"`
	EmbeddingModel string `yaml:"embedding_model,omitempty" koanf:"embedding_model"`
}
