package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carcompare-api/internal/app"
	"carcompare-api/internal/config"
	"carcompare-api/internal/handler"
)

func main() {
	cfg := config.Load()

	logger := app.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	slog.Info("starting carcompare-api")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stack, err := app.New(ctx, cfg, app.Options{Favorites: true, Retries: -1}, logger)
	cancel()
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	// nil interfaces report "disabled" on /health
	var db handler.Pinger
	if stack.DB != nil {
		db = stack.DB
	}

	router := handler.NewRouter(handler.Handlers{
		Health:    handler.NewHealthHandler(db, stack.Cache),
		Cars:      handler.NewCarHandler(stack.Cars, stack.Catalog, logger),
		Images:    handler.NewImageHandler(stack.Images),
		Favorites: handler.NewFavoriteHandler(stack.Favorites, logger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		slog.Info("server started", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	slog.Info("server stopped")
}
