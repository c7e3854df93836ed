package app

import (
	"context"
	"errors"
	"fmt"

	"jqery/internal/config"
	"jqery/internal/handler"
	"jqery/internal/logger"
	"jqery/internal/server"
)

type App struct {
	core   *Core
	server *server.Server
	log    *logger.Logger
}

// New loads configuration from args and the environment and builds the
// HTTP application.
func New(ctx context.Context, args []string) (*App, error) {
	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	core, err := NewCore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return NewWithCore(cfg, core, log), nil
}

// NewWithCore wires the HTTP surface around an existing Core.
func NewWithCore(cfg *config.Config, core *Core, log *logger.Logger) *App {
	if log == nil {
		log = logger.NewNop()
	}
	queryHandler := handler.NewQueryHandler(core.Pipeline, cfg.HTTP.MaxUploadBytes, log)
	healthHandler := handler.NewHealthHandler(cfg.LLM.Provider)

	mux := server.NewMux(queryHandler, healthHandler, log)
	return &App{
		core:   core,
		server: server.New(cfg.Port, mux, log),
		log:    log,
	}
}

func (a *App) Logger() *logger.Logger { return a.log }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := errors.Join(a.server.Shutdown(ctx), a.core.Close())
	a.log.Sync()
	return err
}
