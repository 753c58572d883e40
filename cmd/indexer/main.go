package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/database"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/events"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/search"
	"github.com/zatekoja/tuitioncentres/backend/internal/application/services"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
	"github.com/zatekoja/tuitioncentres/backend/pkg/config"
)

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "drop the Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-indexer", cfg.Env)

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Err(err).Str("interval", intervalValue).Msg("invalid interval")
		}
		if interval <= 0 {
			log.Fatal().Msg("interval must be greater than zero")
		}
	}

	if os.Getenv("RESET_TYPESENSE") == "true" {
		reset = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, reset); err != nil {
			log.Error().Err(err).Msg("reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("next_in", interval).Msg("reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, reset bool) error {
	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	store, err := database.NewCentreAdapter(pgClient.DB(), database.DialectPostgres)
	if err != nil {
		return err
	}

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		return err
	}
	index := search.NewTypesenseAdapter(tsClient, store, nil)

	var eventBus providers.EventBus
	if redisClient, err := redis.NewClient(ctx, &cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, API caches will expire on their own")
	} else {
		defer redisClient.Close()
		eventBus = events.NewRedisEventBus(redisClient.Client())
		defer eventBus.Close()
	}

	summary, err := services.NewDirectoryIngestionService(store, index, eventBus).Reindex(ctx, reset)
	if err != nil {
		return err
	}

	log.Info().Int("centres", summary.CentresIndexed).Msg("indexing complete")
	return nil
}
