package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/skylark/internal/config"
	"github.com/sandevgo/skylark/internal/core"
	"github.com/sandevgo/skylark/pkg/log"
)

// NewProvider creates the appropriate TextGenerator based on configuration.
func NewProvider(ctx context.Context, provider string, cfg *config.LLMConfig) (core.TextGenerator, error) {
	log.FromCtx(ctx).Info().
		Str("provider", provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch provider {
	case "mistral":
		return NewMistral(cfg.MistralAPIKey, cfg.Model), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Model), nil
	case "openrouter":
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Model), nil
	case "ollama":
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Model), nil
	case "custom":
		return NewCustomOpenAI(cfg.CustomBaseURL, cfg.CustomAPIKey, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
