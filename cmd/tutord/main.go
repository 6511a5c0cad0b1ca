package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homework-ai/tutor/observability"
	"github.com/homework-ai/tutor/server"
	"github.com/homework-ai/tutor/session"
	"github.com/homework-ai/tutor/tutor"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var handler slog.Handler
	if cfg.Debug {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	logger := slog.New(handler)
	observer := observability.NewSlogObserver(logger)

	store := session.NewMemoryStore(cfg.Engine.Session)
	store.SetObserver(observer)

	eng, err := tutor.New(&cfg.Engine,
		tutor.WithStore(store),
		tutor.WithObserver(observer),
	)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	router, err := server.New(eng, cfg.Server, observer)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Engine.Session.IdleTTL > 0 {
		go store.Sweep(ctx, cfg.Engine.Session.IdleTTL)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "model", cfg.Engine.Backend.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}
}
