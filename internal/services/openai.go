package services

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService builds a TextGenerator backed by an OpenAI-compatible
// chat-completion endpoint. No embedding support is exposed; narrative
// indexing is skipped under this provider.
func NewOpenAIService(apiKey, baseURL, model string) TextGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &openAIService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// GenerateText implements TextGenerator.
func (o *openAIService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateTextWithRetry implements TextGenerator.
func (o *openAIService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		result, err := o.GenerateText(ctx, prompt, temperature)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
