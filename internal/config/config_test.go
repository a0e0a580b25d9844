package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider %q, got %q", ProviderGoogle, cfg.Provider)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Errorf("expected default model gemini-2.5-flash, got %q", cfg.Model)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("expected default temperature 0.3, got %v", cfg.Temperature)
	}
	if cfg.Server.MaxSessions != 256 {
		t.Errorf("expected default max_sessions 256, got %d", cfg.Server.MaxSessions)
	}
	if d, err := cfg.Timeout(); err != nil || d != 2*time.Minute {
		t.Errorf("expected default timeout 2m, got %v (%v)", d, err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.cyanguide.yml")

	original := DefaultConfig()
	original.Provider = ProviderOpenAI
	original.Model = "gpt-4o"
	original.Temperature = 0.5
	original.Server.Addr = ":9000"
	original.Server.AllowAllOrigins = true
	original.Chat.RequestTimeout = "45s"
	original.Chat.KeepPartialOnError = true
	original.Search.Semantic = true

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Provider != original.Provider {
		t.Errorf("provider: got %q, want %q", loaded.Provider, original.Provider)
	}
	if loaded.Model != original.Model {
		t.Errorf("model: got %q, want %q", loaded.Model, original.Model)
	}
	if loaded.Temperature != original.Temperature {
		t.Errorf("temperature: got %v, want %v", loaded.Temperature, original.Temperature)
	}
	if loaded.Server != original.Server {
		t.Errorf("server: got %+v, want %+v", loaded.Server, original.Server)
	}
	if loaded.Chat != original.Chat {
		t.Errorf("chat: got %+v, want %+v", loaded.Chat, original.Chat)
	}
	if !loaded.Search.Semantic {
		t.Error("search.semantic lost in round-trip")
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Provider != ProviderGoogle {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	if err := os.WriteFile(path, []byte("provider: google\nserver:\n  addr: \":8080\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CYANGUIDE_PROVIDER", "ollama")
	t.Setenv("CYANGUIDE_SERVER__ADDR", ":9999")
	t.Setenv("CYANGUIDE_CHAT__REQUESTS_PER_MINUTE", "5")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Provider != ProviderOllama {
		t.Errorf("env override failed: got %q, want %q", loaded.Provider, ProviderOllama)
	}
	if loaded.Model != "llama3" {
		t.Errorf("expected provider default model, got %q", loaded.Model)
	}
	if loaded.Server.Addr != ":9999" {
		t.Errorf("nested env override failed: got %q", loaded.Server.Addr)
	}
	if loaded.Chat.RequestsPerMinute != 5 {
		t.Errorf("nested env override failed: got %d", loaded.Chat.RequestsPerMinute)
	}
}

func TestLoadExplicitModelKept(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")
	if err := os.WriteFile(path, []byte("provider: openai\nmodel: gpt-4.1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Model != "gpt-4.1" {
		t.Errorf("expected explicit model, got %q", loaded.Model)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	if err := os.WriteFile(path, []byte("provider: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"fake provider", func(c *Config) { c.Provider = ProviderFake }, false},
		{"empty provider", func(c *Config) { c.Provider = "" }, true},
		{"invalid provider", func(c *Config) { c.Provider = "invalid" }, true},
		{"empty model", func(c *Config) { c.Model = "" }, true},
		{"negative temperature", func(c *Config) { c.Temperature = -0.1 }, true},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, true},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, true},
		{"zero sessions", func(c *Config) { c.Server.MaxSessions = 0 }, true},
		{"negative rpm", func(c *Config) { c.Chat.RequestsPerMinute = -1 }, true},
		{"bad timeout", func(c *Config) { c.Chat.RequestTimeout = "soon" }, true},
		{"negative timeout", func(c *Config) { c.Chat.RequestTimeout = "-1s" }, true},
		{"no timeout", func(c *Config) { c.Chat.RequestTimeout = "" }, false},
		{"semantic without embeddings", func(c *Config) {
			c.Provider = ProviderFake
			c.Search.Semantic = true
		}, true},
		{"semantic with explicit model", func(c *Config) {
			c.Provider = ProviderFake
			c.Search.Semantic = true
			c.Search.EmbeddingModel = "custom"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEmbeddingModel(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.EmbeddingModel(); got != "text-embedding-004" {
		t.Errorf("expected google default embedding model, got %q", got)
	}
	cfg.Search.EmbeddingModel = "gemini-embedding-001"
	if got := cfg.EmbeddingModel(); got != "gemini-embedding-001" {
		t.Errorf("expected configured embedding model, got %q", got)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderGoogle, "GOOGLE_API_KEY"},
		{ProviderOllama, ""},
		{ProviderFake, ""},
	}
	for _, tt := range tests {
		got := APIKeyEnvVar(tt.provider)
		if got != tt.want {
			t.Errorf("APIKeyEnvVar(%q) = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestValidateTemperature(t *testing.T) {
	for _, s := range []string{"0", "0.3", "2"} {
		if err := validateTemperature(s); err != nil {
			t.Errorf("validateTemperature(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "hot", "-1", "2.1"} {
		if err := validateTemperature(s); err == nil {
			t.Errorf("validateTemperature(%q) should fail", s)
		}
	}
}
