package llmclient

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey is returned by every call of a client built without a credential.
	ErrMissingAPIKey = errors.New("llm: API key is not configured")
	// ErrNonText means the model answered with something other than a text block.
	ErrNonText = errors.New("llm: response content is not text")
	// ErrEmptyResponse means the model returned no content at all.
	ErrEmptyResponse = errors.New("llm: empty response")
	// ErrUnknownProvider is returned by New for an unsupported provider name.
	ErrUnknownProvider = errors.New("llm: unknown provider")
)

// LLMClient is a single-shot completion capability: one system instruction,
// one user message, one text answer.
type LLMClient interface {
	Name() string
	Close() error
	Complete(ctx context.Context, system, user string) (string, error)
}
