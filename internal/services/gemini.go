package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

type GeminiService interface {
	TextGenerator
	Embedder
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(apiKey, model string) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  model,
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements TextGenerator.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateTextWithRetry implements TextGenerator.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := g.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		// Check if context is cancelled
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < maxRetries {
			fmt.Printf("⚠️ Attempt %d failed: %v. Retrying...\n", attempt, err)
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
