package llmclient

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const DefaultAnthropicModel = "claude-3-5-sonnet-20240620"

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	cli       anthropic.Client
	model     string
	maxTokens int64
	hasKey    bool
}

// NewAnthropicClient builds a client. SDK-level retries are disabled: a
// failed call fails the request.
func NewAnthropicClient(apiKey, model, baseURL string, maxTokens int) *AnthropicClient {
	if model == "" {
		model = DefaultAnthropicModel
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{
		cli:       anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
		hasKey:    apiKey != "",
	}
}

func (a *AnthropicClient) Name() string { return "Anthropic:" + a.model }
func (a *AnthropicClient) Close() error { return nil }

// Complete sends one non-streaming message and returns the first content
// block, which must be text.
func (a *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	if !a.hasKey {
		return "", ErrMissingAPIKey
	}
	msg, err := a.cli.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	if len(msg.Content) == 0 {
		return "", ErrEmptyResponse
	}
	block := msg.Content[0]
	if block.Type != "text" {
		return "", fmt.Errorf("%w: got %q block", ErrNonText, block.Type)
	}
	return block.Text, nil
}
