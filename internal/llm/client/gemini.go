package llmclient

import (
	"context"
	"fmt"

	genai "google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli       *genai.Client
	model     string
	maxTokens int32
}

// NewGeminiClient builds a client. Without an API key no genai client is
// created and every Complete call returns ErrMissingAPIKey. An empty baseURL
// uses the public endpoint.
func NewGeminiClient(ctx context.Context, apiKey, model, baseURL string, maxTokens int) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	g := &GeminiClient{model: model, maxTokens: int32(maxTokens)}
	if apiKey == "" {
		return g, nil
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, err
	}
	g.cli = cli
	return g, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// Complete asks for application/json so the envelope comes back unfenced.
func (g *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	if g.cli == nil {
		return "", ErrMissingAPIKey
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: user}}}},
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
			ResponseMIMEType:  "application/json",
			MaxOutputTokens:   g.maxTokens,
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	part := resp.Candidates[0].Content.Parts[0]
	if part.Text == "" {
		return "", ErrNonText
	}
	return part.Text, nil
}
