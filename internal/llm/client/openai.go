package llmclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	GroqBaseURL        = "https://api.groq.com/openai/v1"
)

// OpenAIClient calls any OpenAI-compatible Chat Completions endpoint.
type OpenAIClient struct {
	cli       *openai.Client
	label     string
	model     string
	maxTokens int
	hasKey    bool
}

// NewOpenAIClient builds a client for api.openai.com, or for baseURL when set.
// label prefixes Name(), e.g. "OpenAI" or "Groq".
func NewOpenAIClient(label, apiKey, model, baseURL string, maxTokens int) *OpenAIClient {
	if label == "" {
		label = "OpenAI"
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		cli:       openai.NewClientWithConfig(cfg),
		label:     label,
		model:     model,
		maxTokens: maxTokens,
		hasKey:    apiKey != "",
	}
}

// NewGroqClient is an OpenAI-compatible client pointed at Groq.
func NewGroqClient(apiKey, model string, maxTokens int) *OpenAIClient {
	if model == "" {
		model = DefaultGroqModel
	}
	return NewOpenAIClient("Groq", apiKey, model, GroqBaseURL, maxTokens)
}

func (o *OpenAIClient) Name() string { return o.label + ":" + o.model }
func (o *OpenAIClient) Close() error { return nil }

func (o *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !o.hasKey {
		return "", ErrMissingAPIKey
	}
	resp, err := o.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", o.label, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", ErrNonText
	}
	return content, nil
}
