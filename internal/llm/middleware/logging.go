package llmmiddleware

import (
	"context"
	"time"

	llmclient "jqery/internal/llm/client"
	"jqery/internal/logger"
	"jqery/internal/requestid"
)

// WithLogging logs request size, estimated tokens, latency and errors.
func WithLogging(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.NewNop()
	}
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logging{next: next, log: log}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  *logger.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Complete(ctx context.Context, system, user string) (string, error) {
	log := l.log.With("request_id", requestid.From(ctx), "client", l.next.Name())
	log.Debug("llm request",
		"bytes", len(system)+len(user),
		"est_tokens", llmclient.CountTokens(system)+llmclient.CountTokens(user),
	)
	start := time.Now()
	text, err := l.next.Complete(ctx, system, user)
	elapsed := time.Since(start)
	if err != nil {
		log.Warn("llm error", "elapsed", elapsed, "error", err)
		return text, err
	}
	log.Info("llm response", "elapsed", elapsed, "bytes", len(text))
	return text, nil
}
