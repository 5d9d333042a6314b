package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kozaktomas/event-report/internal/config"
)

// Providers lists the names accepted by NewProvider.
var Providers = []string{"gemini", "openai", "ollama"}

// NewProvider creates the named provider from configuration. An empty name
// selects cfg.AI.Provider.
func NewProvider(ctx context.Context, cfg *config.Config, name string) (Provider, error) {
	if name == "" {
		name = cfg.AI.Provider
	}
	switch strings.ToLower(name) {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		p, err := NewGeminiProvider(ctx, cfg.Gemini.APIKey, pricingFor(cfg, geminiModel))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return p, nil
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		return NewOpenAIProvider(cfg.OpenAI.Token, pricingFor(cfg, chatModel)), nil
	case "ollama":
		p := NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model)
		p.pricing = pricingFor(cfg, p.model)
		return p, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: %s)", name, strings.Join(Providers, ", "))
	}
}

func pricingFor(cfg *config.Config, model string) RequestPricing {
	pricing := cfg.GetModelPricing(model)
	return RequestPricing{Input: pricing.Standard.Input, Output: pricing.Standard.Output}
}
