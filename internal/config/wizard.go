package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to cyanguide! Let's configure the build assistant.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"google", "openai", "ollama", "fake"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: DefaultModel(cfg.Provider),
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Temperature.
	tempPrompt := promptui.Prompt{
		Label:    "Temperature",
		Default:  "0.3",
		Validate: validateTemperature,
	}
	tempStr, err := tempPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("temperature: %w", err)
	}
	t, _ := strconv.ParseFloat(tempStr, 32)
	cfg.Temperature = float32(t)

	// 4. Listen address for `cyanguide serve`.
	addrPrompt := promptui.Prompt{
		Label:   "Listen address for the web server",
		Default: cfg.Server.Addr,
	}
	if cfg.Server.Addr, err = addrPrompt.Run(); err != nil {
		return nil, fmt.Errorf("listen address: %w", err)
	}

	// 5. Semantic search, only where the provider can embed.
	if DefaultEmbeddingModel(cfg.Provider) != "" {
		semanticPrompt := promptui.Prompt{
			Label:     "Enable semantic search over the guide",
			IsConfirm: true,
		}
		_, err := semanticPrompt.Run()
		switch {
		case err == nil:
			cfg.Search.Semantic = true
		case errors.Is(err, promptui.ErrAbort):
			cfg.Search.Semantic = false
		default:
			return nil, fmt.Errorf("semantic search: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	envVar := APIKeyEnvVar(cfg.Provider)
	if envVar != "" {
		if os.Getenv(envVar) == "" {
			fmt.Printf("\nNote: Set %s in your environment (or .env) before running cyanguide serve.\n", envVar)
		}
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateTemperature(s string) error {
	t, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return fmt.Errorf("not a number")
	}
	if t < 0 || t > 2 {
		return fmt.Errorf("must be between 0 and 2")
	}
	return nil
}
