package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carcompare-api/internal/app"
	"carcompare-api/internal/config"
	"carcompare-api/internal/warmer"
)

func main() {
	cfg := config.Load()
	defaults := warmer.DefaultConfig()

	var (
		workers         = flag.Int("workers", cfg.Warmer.Workers, "Number of concurrent workers")
		delay           = flag.Duration("delay", cfg.Warmer.Delay, "Pause between requests of one worker")
		checkpointEvery = flag.Int("checkpoint-every", defaults.CheckpointEvery, "Save checkpoint every N terms")
		checkpointFile  = flag.String("checkpoint-file", cfg.Warmer.CheckpointFile, "Checkpoint file path")
		fresh           = flag.Bool("fresh", false, "Ignore an existing checkpoint")
		retryFailed     = flag.Bool("retry-failed", false, "Only retry failed terms whose retry time has come")
		retryLimit      = flag.Int("retry-limit", 200, "Maximum failed terms to retry")
		retries         = flag.Int("retries", 3, "HTTP retries per term")
		dryRun          = flag.Bool("dry-run", false, "Dry run mode (don't make API calls)")
		monitorPort     = flag.Int("monitor-port", cfg.Warmer.MonitorPort, "HTTP monitoring server port")
		noMonitor       = flag.Bool("no-monitor", false, "Disable HTTP monitoring")
		keepResolved    = flag.Duration("keep-resolved", 30*24*time.Hour, "Delete resolved failures older than this")
		logLevel        = flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := app.NewLogger(*logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down gracefully", "signal", sig)
		cancel()
	}()

	stack, err := app.New(ctx, cfg, app.Options{Retries: *retries}, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	if stack.Live == nil && !*dryRun {
		logger.Error("CARS_API_KEY is required to warm the cache")
		os.Exit(1)
	}

	var failures warmer.FailureStore
	if stack.Failures != nil {
		failures = stack.Failures
		if n, err := stack.Failures.DeleteResolved(ctx, *keepResolved); err != nil {
			logger.Warn("failed to clean resolved failures", "error", err)
		} else if n > 0 {
			logger.Info("cleaned resolved failures", "count", n)
		}
	} else {
		logger.Warn("database disabled, failed terms will not be tracked")
	}

	var refresher warmer.Refresher
	if stack.Live != nil {
		refresher = stack.Live
	}

	svc := warmer.NewService(warmer.Config{
		Workers:          *workers,
		Delay:            *delay,
		CheckpointEvery:  *checkpointEvery,
		CheckpointFile:   *checkpointFile,
		Resume:           !*fresh,
		DryRun:           *dryRun,
		MonitorPort:      *monitorPort,
		EnableMonitoring: !*noMonitor,
	}, refresher, failures, logger)

	if *retryFailed {
		err = svc.RunRetries(ctx, *retryLimit)
	} else {
		terms := stack.Catalog.Terms()
		logger.Info("loaded catalog terms", "count", len(terms))
		err = svc.Run(ctx, terms)
	}
	if err != nil {
		logger.Error("warmer failed", "error", err)
		os.Exit(1)
	}

	if stack.Failures != nil {
		stats, err := stack.Failures.Stats(ctx)
		if err != nil {
			logger.Warn("failed to load failure stats", "error", err)
			return
		}
		logger.Info("pending failures by type", "stats", stats)
	}
}
