package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// GoogleAPIKey returns the Gemini API key from the environment. The hosted
// build of the guide used API_KEY, so that name is honoured last.
func GoogleAPIKey() string {
	for _, name := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// NewProvider creates a new LLM provider based on the given provider type.
// Supported provider types: "google", "openai", "ollama", "fake".
func NewProvider(ctx context.Context, providerType string) (Provider, error) {
	switch providerType {
	case "google":
		apiKey := GoogleAPIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is not set")
		}
		return NewGoogleProvider(ctx, apiKey)

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey), nil

	case "ollama":
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOpenAICompatibleProvider("ollama", strings.TrimRight(host, "/")+"/v1", "ollama"), nil

	case "fake":
		return NewFakeProvider(), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
