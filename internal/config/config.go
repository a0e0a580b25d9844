package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".cyanguide.yml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CYANGUIDE_"

// LoadDotEnv loads a .env file from the working directory into the process
// environment, if one exists. Variables already set are not overridden.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CYANGUIDE_*). A double underscore selects
// a nested key: CYANGUIDE_SERVER__ADDR sets server.addr.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: CYANGUIDE_PROVIDER -> provider, etc.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// A provider switch without an explicit model picks that provider's default.
	if !k.Exists("model") && cfg.Provider != ProviderGoogle {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderGoogle: true,
	ProviderOpenAI: true,
	ProviderOllama: true,
	ProviderFake:   true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of google, openai, ollama, fake", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if c.Server.MaxSessions < 1 {
		return fmt.Errorf("server.max_sessions must be at least 1")
	}

	if c.Chat.RequestsPerMinute < 0 {
		return fmt.Errorf("chat.requests_per_minute must be non-negative")
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}

	if c.Search.Semantic && c.EmbeddingModel() == "" {
		return fmt.Errorf("search.semantic requires an embedding model for provider %q", c.Provider)
	}

	return nil
}

// Timeout parses chat.request_timeout. Empty or "0" disables the timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Chat.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Chat.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid chat.request_timeout %q: %w", c.Chat.RequestTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("chat.request_timeout must be non-negative")
	}
	return d, nil
}

// EmbeddingModel returns the configured embedding model or the provider default.
func (c *Config) EmbeddingModel() string {
	if c.Search.EmbeddingModel != "" {
		return c.Search.EmbeddingModel
	}
	return DefaultEmbeddingModel(c.Provider)
}

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}
