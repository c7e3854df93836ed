package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jqery/internal/app"
)

func main() {
	a, err := app.New(context.Background(), os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}
	lg := a.Logger()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	var startErr error
	select {
	case <-quit:
	case startErr = <-errCh:
		if startErr != nil {
			lg.Error("server error", "error", startErr)
		}
	}

	lg.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Shutdown(ctx); err != nil {
		lg.Fatal("server forced to shutdown", "error", err)
	}

	if startErr != nil {
		os.Exit(1)
	}
	lg.Info("server exiting")
}
