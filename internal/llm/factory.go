package llm

import (
	"fmt"
	"os"

	"github.com/halbot/hal-advisor/internal/config"
)

// NewProvider creates an LLM provider for the given provider type and model.
// API keys come from the conventional environment variables; a missing key
// is a configuration error surfaced at startup, never per turn.
func NewProvider(providerType config.ProviderType, model string) (Provider, error) {
	switch providerType {
	case config.ProviderAnthropic:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderAnthropic))
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model), nil

	case config.ProviderOpenAI:
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case config.ProviderOllama:
		host := os.Getenv("OLLAMA_HOST")
		if host == "" {
			host = "http://localhost:11434"
		}
		return NewOllamaProvider(host, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
