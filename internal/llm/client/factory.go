package llmclient

import (
	"context"
	"fmt"
	"strings"
)

// DefaultMaxTokens is the completion token ceiling sent with every request.
const DefaultMaxTokens = 1024

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderGroq      = "groq"
	ProviderFake      = "fake"
)

// Options selects and configures a provider.
type Options struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
}

// New builds the client for opts.Provider. An empty provider means Anthropic.
// A missing API key is not an error here; the client fails each call instead.
func New(ctx context.Context, opts Options) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderAnthropic:
		return NewAnthropicClient(opts.APIKey, opts.Model, opts.BaseURL, opts.MaxTokens), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, opts.APIKey, opts.Model, opts.BaseURL, opts.MaxTokens)
	case ProviderOpenAI:
		return NewOpenAIClient("OpenAI", opts.APIKey, opts.Model, opts.BaseURL, opts.MaxTokens), nil
	case ProviderGroq:
		if opts.BaseURL != "" {
			return NewOpenAIClient("Groq", opts.APIKey, firstNonEmpty(opts.Model, DefaultGroqModel), opts.BaseURL, opts.MaxTokens), nil
		}
		return NewGroqClient(opts.APIKey, opts.Model, opts.MaxTokens), nil
	case ProviderFake:
		return NewIdentityFakeClient(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
