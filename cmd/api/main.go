package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/cache"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/database"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/events"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/memory"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/search"
	"github.com/zatekoja/tuitioncentres/backend/internal/api/handlers"
	"github.com/zatekoja/tuitioncentres/backend/internal/api/routes"
	"github.com/zatekoja/tuitioncentres/backend/internal/application/services"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
	"github.com/zatekoja/tuitioncentres/backend/pkg/config"
	"github.com/zatekoja/tuitioncentres/backend/pkg/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	ctx := context.Background()

	if cfg.OTEL.Enabled {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to setup OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("failed to shutdown OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize metrics")
	}

	checks := map[string]handlers.HealthCheck{}

	var repo repositories.CentreSearchRepository
	switch cfg.Search.Backend {
	case config.BackendMemory:
		store, err := loadMemoryStore(cfg.Search.FixturePath)
		if err != nil {
			log.Fatal().Err(err).Str("fixture", cfg.Search.FixturePath).Msg("failed to load fixture")
		}
		repo = store

	case config.BackendPostgres, config.BackendTypesense:
		pgClient, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
		}
		defer pgClient.Close()
		checks["database"] = pgClient.Ping

		if err := database.ApplySchema(ctx, pgClient.DB()); err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}

		pgAdapter, err := database.NewCentreAdapter(pgClient.DB(), database.DialectPostgres, database.WithMetrics(metrics))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create centre adapter")
		}
		repo = pgAdapter

		if cfg.Search.Backend == config.BackendTypesense {
			tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to connect to Typesense")
			}
			tsAdapter := search.NewTypesenseAdapter(tsClient, pgAdapter, metrics)
			if err := tsAdapter.InitSchema(ctx, false); err != nil {
				log.Fatal().Err(err).Msg("failed to initialize Typesense schema")
			}
			repo = tsAdapter
		}
	}

	var (
		eventBus                 providers.EventBus
		cacheInvalidationService *services.CacheInvalidationService
		cacheEnabled             bool
	)

	// The in-memory backend is served uncached.
	if cfg.Search.CacheEnabled && cfg.Search.Backend != config.BackendMemory {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, serving without cache")
		} else {
			defer redisClient.Close()
			checks["cache"] = redisClient.Ping

			cacheProvider := cache.NewRedisAdapter(redisClient.Client())
			repo = database.NewCachedCentreAdapter(repo, cacheProvider, metrics)
			eventBus = events.NewRedisEventBus(redisClient.Client())

			cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
			if err := cacheInvalidationService.Start(); err != nil {
				log.Warn().Err(err).Msg("failed to start cache invalidation")
			}
			cacheEnabled = true
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("search cache enabled")
		}
	}
	searchService := services.NewCentreSearchService(repo, cfg.Search.Backend, metrics)
	centreHandler := handlers.NewCentreHandler(searchService, handlers.Limits{
		Default: cfg.Search.DefaultLimit,
		Max:     cfg.Search.MaxLimit,
	})
	healthHandler := handlers.NewHealthHandler(checks)

	warmCtx, stopWarming := context.WithCancel(ctx)
	defer stopWarming()
	if cacheEnabled {
		warmer := services.NewCacheWarmingService(searchService, 3, cfg.Search.DefaultLimit)
		go warmer.StartPeriodicWarming(warmCtx, cfg.Search.WarmInterval)
	}

	router := routes.NewRouter(centreHandler, healthHandler, metrics, cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("backend", cfg.Search.Backend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}
	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event bus")
		}
	}

	log.Info().Msg("server exited")
}

// loadMemoryStore builds the in-memory executor from a YAML fixture, canonicalising
// subject names when the normalization config is available
func loadMemoryStore(path string) (*memory.Store, error) {
	normalizer, err := utils.NewSubjectNormalizer(utils.GetSubjectConfigPath())
	if err != nil {
		log.Warn().Err(err).Msg("subject normalization disabled")
		normalizer = nil
	}

	centres, err := memory.LoadFixture(path, normalizer)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore(centres)
	log.Info().Int("centres", len(centres)).Str("fixture", path).Msg("loaded in-memory directory")
	return store, nil
}
