package app

import (
	"context"
	"fmt"

	"jqery/internal/config"
	"jqery/internal/jq"
	llmclient "jqery/internal/llm/client"
	llmmiddleware "jqery/internal/llm/middleware"
	"jqery/internal/logger"
	"jqery/internal/pipeline"
	"jqery/internal/synth"
)

// Core is the surface-independent part of the program: one LLM client and
// the pipeline built on it.
type Core struct {
	Client   llmclient.LLMClient
	Pipeline *pipeline.Service
}

// NewCore builds the LLM client from cfg, wraps it with logging and prompt
// hooks, and assembles the pipeline.
func NewCore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Core, error) {
	client, err := llmclient.New(ctx, cfg.ClientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to build llm client: %w", err)
	}
	return NewCoreWithClient(cfg, client, log)
}

// NewCoreWithClient is NewCore with a caller-supplied client.
func NewCoreWithClient(cfg *config.Config, client llmclient.LLMClient, log *logger.Logger) (*Core, error) {
	if log == nil {
		log = logger.NewNop()
	}
	cache, err := synth.NewCache(cfg.Synth.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis cache: %w", err)
	}
	wrapped := llmmiddleware.Wrap(client,
		llmmiddleware.WithLogging(log),
		llmmiddleware.WithHooks(),
	)
	s := synth.New(wrapped,
		synth.WithMaxArrayLength(cfg.Synth.MaxArrayLength),
		synth.WithCache(cache),
		synth.WithLogger(log),
	)
	log.Info("llm configured",
		"client", client.Name(),
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"max_tokens", cfg.LLM.MaxTokens,
		"max_array_length", cfg.Synth.MaxArrayLength,
		"cache_size", cfg.Synth.CacheSize,
		"credentials_set", cfg.LLM.APIKey != "",
	)
	return &Core{
		Client:   wrapped,
		Pipeline: pipeline.New(s, jq.New(), log),
	}, nil
}

func (c *Core) Close() error {
	return c.Client.Close()
}
