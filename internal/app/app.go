// Package app assembles the search stack from configuration for the
// server, the warmer and the terminal client.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"carcompare-api/internal/cache"
	"carcompare-api/internal/client"
	"carcompare-api/internal/config"
	"carcompare-api/internal/database"
	"carcompare-api/internal/imagecdn"
	"carcompare-api/internal/matching"
	"carcompare-api/internal/repository"
	"carcompare-api/internal/seed"
	"carcompare-api/internal/service"
	"carcompare-api/internal/specs"
)

// App holds the wired components. Fields for optional components are nil
// when they are not configured.
type App struct {
	Catalog   *seed.Catalog
	Cars      *service.CarService
	Live      *service.LiveSource
	Favorites *service.FavoriteService
	Images    *imagecdn.Builder
	Cache     cache.Client
	DB        *pgxpool.Pool
	Failures  *repository.WarmFailureRepo

	local  *repository.LocalFavoriteRepo
	logger *slog.Logger
}

// Options select the optional parts of the stack
type Options struct {
	Favorites bool
	// Retries overrides CARS_API_RETRIES when >= 0
	Retries int
}

// New builds the stack. The database is only contacted when DB_ENABLED is set;
// Redis only when REDIS_ADDR is set, otherwise an in-memory cache is used.
func New(ctx context.Context, cfg *config.Config, opts Options, logger *slog.Logger) (*App, error) {
	a := &App{logger: logger}

	catalog, err := seed.LoadFile(cfg.Search.SeedCatalogFile)
	if err != nil {
		return nil, err
	}
	a.Catalog = catalog

	policy, err := matching.LoadPolicy(cfg.Search.ScoringPolicyFile)
	if err != nil {
		return nil, err
	}

	a.Images = imagecdn.NewBuilder(cfg.ImageCDN.URL, cfg.ImageCDN.Customer)

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.Cache = rc
		logger.Info("redis cache connected", "addr", cfg.Redis.Addr)
	} else {
		a.Cache = cache.NewMemoryClient(0)
	}

	if cfg.Database.Enabled {
		logger.Info("connecting to database", "host", cfg.Database.Host, "database", cfg.Database.Name)
		pool, err := database.Connect(ctx, database.ConnectionConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Name,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.DB = pool
		if err := database.RunMigrations(ctx, pool); err != nil {
			a.Close()
			return nil, err
		}
		a.Failures = repository.NewWarmFailureRepo(pool)
	}

	sources := []service.Source{service.NewSeedSource(catalog)}
	if cfg.CarsAPI.Key != "" {
		retries := cfg.CarsAPI.Retries
		if opts.Retries >= 0 {
			retries = opts.Retries
		}
		api := client.NewNinjasClient(client.Config{
			BaseURL:           cfg.CarsAPI.URL,
			APIKey:            cfg.CarsAPI.Key,
			RequestsPerSecond: cfg.CarsAPI.RequestsPerSecond,
			Timeout:           cfg.Search.SourceTimeout,
			Retry:             client.RetryConfig{MaxRetries: retries},
		})
		normalizer := specs.Normalizer{EstimatePrice: cfg.Search.EstimatePrice}
		a.Live = service.NewLiveSource(api, a.Cache, cfg.Redis.TTL, normalizer, catalog.Brands(), logger)
		sources = append(sources, a.Live)
	} else {
		logger.Warn("CARS_API_KEY not set, live source disabled")
	}
	sources = append(sources, service.NewHeuristicSource(catalog))

	a.Cars = service.NewCarService(service.CarServiceConfig{
		Sources:       sources,
		Policy:        policy,
		Images:        a.Images,
		SourceTimeout: cfg.Search.SourceTimeout,
		Logger:        logger,
	})

	if opts.Favorites {
		local, err := repository.NewLocalFavoriteRepo(cfg.LocalFavoritesPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.local = local

		var owners service.FavoriteStore
		if a.DB != nil {
			owners = repository.NewFavoriteRepo(a.DB)
		}
		a.Favorites = service.NewFavoriteService(owners, local, a.Images)
	}

	return a, nil
}

// Close releases every open connection
func (a *App) Close() {
	if a.local != nil {
		a.local.Close()
	}
	if a.Cache != nil {
		a.Cache.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// NewLogger creates a JSON logger on stdout at the given level
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel maps debug, warn and error to their slog level; anything else is info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
