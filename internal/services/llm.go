package services

import (
	"context"
	"fmt"

	"deepwork/report-generator/internal/config"
)

// TextGenerator is the external text-generation collaborator. Its output is
// trusted only as "probably valid markup with possible wrapping fences".
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

// Embedder produces vector embeddings for narrative indexing. Not every
// provider supports it; callers treat a nil Embedder as "indexing disabled".
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// NewTextGenerator selects the generation backend from configuration.
// Returns the generator plus an Embedder when the backend provides one.
func NewTextGenerator(cfg *config.Config) (TextGenerator, Embedder, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		gemini, err := NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, nil, err
		}
		return gemini, gemini, nil
	case config.ProviderOpenAI:
		return NewOpenAIService(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}
