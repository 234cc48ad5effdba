package analysis

import (
	"context"
	"fmt"
)

// Supported text generation providers.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Generator produces free text for a prompt.
type Generator interface {
	// Name is the display name used in error messages, e.g. "Gemini API".
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorConfig selects and configures a provider.
type GeneratorConfig struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewGenerator creates the generator for cfg.Provider. An empty provider
// selects Gemini. A missing API key yields ErrNotConfigured.
func NewGenerator(ctx context.Context, cfg GeneratorConfig) (Generator, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = ProviderGemini
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s %w", ProviderLabel(provider), ErrNotConfigured)
	}

	switch provider {
	case ProviderGemini:
		return NewGemini(ctx, cfg.APIKey, cfg.Model)
	case ProviderOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Provider)
	}
}

// ProviderLabel returns the human-readable provider name.
func ProviderLabel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	default:
		return "Gemini"
	}
}
