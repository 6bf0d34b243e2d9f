package services

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// CompletionService is the single capability the orchestrator needs from the
// model provider: one blocking text completion with a fixed system
// instruction and a per-request user message. Tests replace it with a stub.
type CompletionService interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// CompletionError marks a failed round trip to the completion provider. The
// orchestrator absorbs it into a degraded 待核验 result instead of surfacing
// it to the HTTP layer.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion service call failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

type geminiService struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

func NewGeminiService(apiKey, modelName string, temperature float32) (CompletionService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
	}, nil
}

// Complete implements CompletionService. No retries: a failed call is
// reported once and turned into a degraded result upstream.
func (g *geminiService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(systemPrompt)},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(userPrompt), config)
	if err != nil {
		return "", &CompletionError{Err: err}
	}
	if resp == nil {
		return "", &CompletionError{Err: fmt.Errorf("no response generated (nil response)")}
	}

	text := resp.Text()
	if text == "" {
		return "", &CompletionError{Err: fmt.Errorf("no text content in response")}
	}

	return text, nil
}
