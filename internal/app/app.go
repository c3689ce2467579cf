// Package app initializes and holds long-lived application services, acting
// as a dependency injection container, and drives the scrape pipeline.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/R41CY/movie-scraper/internal/api"
	"github.com/R41CY/movie-scraper/internal/blob"
	"github.com/R41CY/movie-scraper/internal/cache"
	"github.com/R41CY/movie-scraper/internal/clock"
	"github.com/R41CY/movie-scraper/internal/config"
	"github.com/R41CY/movie-scraper/internal/engine"
	"github.com/R41CY/movie-scraper/internal/fetch"
	"github.com/R41CY/movie-scraper/internal/fetch/headless"
	"github.com/R41CY/movie-scraper/internal/publish"
	"github.com/R41CY/movie-scraper/internal/store"
)

// App holds the shared, long-lived services for one scraper process. It is
// initialized once at startup and fails fast if any critical service cannot
// be constructed.
type App struct {
	Cfg    config.Config
	Logger *zap.Logger
	Status *api.Server

	cache     cache.Cache
	fetcher   engine.Fetcher
	renderer  *headless.Renderer
	store     store.Store
	blobs     blob.Store
	publisher publish.Publisher
	clock     clock.Clock
}

// New constructs the App from configuration.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{
		Cfg:    cfg,
		Logger: logger,
		Status: api.NewServer(logger.Named("api")),
		clock:  clock.System{},
	}

	switch cfg.Cache.Backend {
	case "", "memory":
		a.cache = cache.NewMemory(cfg.CacheTTL())
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("using redis request cache", zap.String("addr", cfg.Cache.RedisAddr))
		a.cache = cache.NewRedis(client, cfg.CacheTTL(), logger.Named("cache"))
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}

	// The collector timeout caps one network exchange; the worker's attempt
	// context carries the scraper-level per-attempt budget.
	probe := fetch.NewColly(
		fetch.CollyConfig{
			UserAgent: cfg.Scraper.UserAgent,
			Timeout:   cfg.HTTPTimeout(),
		},
		fetch.NewPoliteness(cfg.Scraper.PerHostQPS, 1),
	)
	a.fetcher = probe

	if cfg.Headless.Enabled {
		renderer, err := headless.New(headless.Config{
			UserAgent:   cfg.Scraper.UserAgent,
			MaxParallel: cfg.Headless.MaxParallel,
			NavTimeout:  cfg.NavTimeout(),
			DomainQPS:   cfg.Headless.DomainQPS,
		}, logger.Named("headless"))
		if err != nil {
			return nil, fmt.Errorf("start headless renderer: %w", err)
		}
		a.renderer = renderer
		detector := fetch.NewDetector(
			cfg.Headless.MinHTMLBytes,
			[]string{"__NEXT_DATA__", "window.__INITIAL_STATE__"},
			[]string{".ipc-metadata-list-summary-item", `[data-testid="plot-xl"]`},
		)
		a.fetcher = fetch.NewPromoting(probe, renderer, detector, logger.Named("fetch"))
	}

	switch cfg.Storage.Backend {
	case "", "none":
		a.blobs = blob.Noop{}
	case "memory":
		a.blobs = blob.NewMemory()
	case "local":
		local, err := blob.NewLocal(cfg.Storage.LocalDir)
		if err != nil {
			return nil, fmt.Errorf("open local blob store: %w", err)
		}
		a.blobs = local
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		gcs, err := blob.NewGCS(client, blob.GCSConfig{Bucket: cfg.Storage.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("open gcs blob store: %w", err)
		}
		logger.Info("archiving blobs to gcs", zap.String("bucket", cfg.Storage.GCSBucket))
		a.blobs = gcs
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.DB.Enabled {
		pg, err := store.NewPostgres(ctx, store.PostgresConfig{
			DSN:      cfg.DB.DSN,
			MaxConns: int32(cfg.DB.MaxConns),
			MinConns: int32(cfg.DB.MinConns),
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("persisting runs to postgres")
		a.store = pg
	} else {
		a.store = store.Noop{}
	}

	if cfg.PubSub.Enabled {
		client, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("create pubsub client: %w", err)
		}
		pub, err := publish.NewPubSub(client)
		if err != nil {
			return nil, fmt.Errorf("create pubsub publisher: %w", err)
		}
		logger.Info("publishing run events", zap.String("topic", cfg.PubSub.TopicName))
		a.publisher = pub
	} else {
		a.publisher = publish.Noop{}
	}

	return a, nil
}

// Close gracefully shuts down all services in the container.
func (a *App) Close() {
	if a.renderer != nil {
		a.renderer.Close()
	}
	a.store.Close()
	_ = a.Logger.Sync()
}
