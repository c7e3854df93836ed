// Package synth turns a JSON payload and a natural-language intent into a
// jq expression by asking an LLM.
package synth

import (
	"context"
	"errors"
	"fmt"

	"jqery/internal/apierr"
	llmclient "jqery/internal/llm/client"
	"jqery/internal/logger"
	"jqery/internal/payload"
	"jqery/internal/util/jsonutil"
)

// ErrNoClient is wrapped when a Synthesizer has no LLM client.
var ErrNoClient = errors.New("synth: no LLM client configured")

// Synthesizer builds the prompt, calls the model once, and parses the reply.
// It is safe for concurrent use when its client is.
type Synthesizer struct {
	llm            llmclient.LLMClient
	maxArrayLength int
	cache          *Cache
	log            *logger.Logger
}

type Option func(*Synthesizer)

// WithMaxArrayLength bounds arrays in the prompt copy. n <= 0 sends the
// payload untruncated.
func WithMaxArrayLength(n int) Option {
	return func(s *Synthesizer) { s.maxArrayLength = n }
}

func WithCache(c *Cache) Option {
	return func(s *Synthesizer) { s.cache = c }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.log = l
		}
	}
}

func New(client llmclient.LLMClient, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		llm:            client,
		maxArrayLength: payload.DefaultMaxArrayLength,
		log:            logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PromptDocument returns the JSON text embedded in the prompt: the payload
// with arrays truncated, or the payload verbatim when truncation is off.
func (s *Synthesizer) PromptDocument(p payload.RawPayload) (string, error) {
	if s.maxArrayLength <= 0 {
		return p.Text, nil
	}
	v, err := p.Decode()
	if err != nil {
		return "", err
	}
	b, err := jsonutil.MarshalNoEscape(payload.Truncate(v, s.maxArrayLength))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Synthesize returns a jq expression for intent over p. Every failure is an
// apierr.SynthesisFailure that wraps the cause.
func (s *Synthesizer) Synthesize(ctx context.Context, p payload.RawPayload, intent string) (string, error) {
	if s.llm == nil {
		return "", apierr.SynthesisFailure(ErrNoClient)
	}
	doc, err := s.PromptDocument(p)
	if err != nil {
		return "", apierr.SynthesisFailure(fmt.Errorf("prepare prompt: %w", err))
	}
	user := BuildUserMessage(doc, intent)

	key := cacheKey(s.llm.Name(), SystemPrompt, user)
	if q, ok := s.cache.Get(key); ok {
		s.log.Debug("synthesis cache hit", "query", q)
		return q, nil
	}

	text, err := s.llm.Complete(ctx, SystemPrompt, user)
	if err != nil {
		return "", apierr.SynthesisFailure(err)
	}
	q, err := ParseEnvelope(text)
	if err != nil {
		s.log.Warn("unusable model reply", "reply", truncateForLog(text), "error", err)
		return "", apierr.SynthesisFailure(err)
	}
	s.cache.Add(key, q)
	return q, nil
}

func truncateForLog(s string) string {
	const max = 512
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
