package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/database"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/events"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/memory"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/search"
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

	var fixturePath string
	var withIndex bool
	flag.StringVar(&fixturePath, "fixture", cfg.Search.FixturePath, "YAML file of centres to load")
	flag.BoolVar(&withIndex, "index", cfg.Search.Backend == config.BackendTypesense, "also refresh the Typesense collection")
	flag.Parse()

	observability.InitLogger(cfg.OTEL.ServiceName+"-seed", cfg.Env)
	ctx := context.Background()

	normalizer, err := utils.NewSubjectNormalizer(utils.GetSubjectConfigPath())
	if err != nil {
		log.Warn().Err(err).Msg("subject normalization disabled")
		normalizer = nil
	}

	centres, err := memory.LoadFixture(fixturePath, normalizer)
	if err != nil {
		log.Fatal().Err(err).Str("fixture", fixturePath).Msg("failed to load fixture")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pgClient.Close()

	if err := database.ApplySchema(ctx, pgClient.DB()); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}

	store, err := database.NewCentreAdapter(pgClient.DB(), database.DialectPostgres)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create centre adapter")
	}

	var index repositories.CentreIndexRepository
	if withIndex {
		tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Typesense")
		}
		index = search.NewTypesenseAdapter(tsClient, store, nil)
	}

	var eventBus providers.EventBus
	if redisClient, err := redis.NewClient(ctx, &cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, skipping reload notification")
	} else {
		defer redisClient.Close()
		eventBus = events.NewRedisEventBus(redisClient.Client())
		defer eventBus.Close()
	}

	reset := os.Getenv("RESET_DB") == "true"
	if reset {
		log.Info().Msg("RESET_DB=true detected, clearing directory before seeding")
	}

	summary, err := services.NewDirectoryIngestionService(store, index, eventBus).Load(ctx, centres, reset)
	if err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	log.Info().
		Int("centres", summary.CentresLoaded).
		Int("skipped", summary.CentresSkipped).
		Int("offerings", summary.OfferingsLoaded).
		Int("indexed", summary.CentresIndexed).
		Msg("seeding complete")
}
