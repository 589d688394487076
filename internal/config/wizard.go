package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard walks the user through creating an initial configuration.
func RunWizard() (*Config, error) {
	cfg := DefaultConfig()

	providerPrompt := promptui.Select{
		Label: "LLM provider",
		Items: []string{"ollama", "openai", "anthropic"},
	}
	_, provider, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(provider)
	cfg.Model = MainPreset(cfg.Provider)
	cfg.ClassifierModel = ClassifierPreset(cfg.Provider)

	// Anthropic has no embeddings API; fall back to OpenAI embeddings.
	switch cfg.Provider {
	case ProviderOllama:
		cfg.EmbeddingProvider = ProviderOllama
		cfg.EmbeddingModel = "nomic-embed-text"
	default:
		cfg.EmbeddingProvider = ProviderOpenAI
		cfg.EmbeddingModel = "text-embedding-3-small"
	}

	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	if dataDir, err := dataPrompt.Run(); err == nil && dataDir != "" {
		cfg.DataDir = dataDir
	}

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("invalid port")
			}
			return nil
		},
	}
	if portStr, err := portPrompt.Run(); err == nil {
		cfg.Port, _ = strconv.Atoi(portStr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("generated config is invalid: %w", err)
	}

	return cfg, nil
}
