package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/database"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/memory"
	"github.com/zatekoja/tuitioncentres/backend/internal/adapters/search"
	"github.com/zatekoja/tuitioncentres/backend/internal/application/services"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
	"github.com/zatekoja/tuitioncentres/backend/internal/evaluation"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/postgres"
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

	var (
		goldenPath string
		k          int
		minExact   float64
	)
	flag.StringVar(&goldenPath, "golden", "config/golden_queries.json", "golden query set")
	flag.IntVar(&k, "k", evaluation.DefaultK, "results evaluated per query")
	flag.Float64Var(&minExact, "min-exact", 1.0, "minimum share of queries that must match exactly")
	flag.Parse()

	observability.InitLogger(cfg.OTEL.ServiceName+"-evaluate", cfg.Env)
	ctx := context.Background()

	queries, err := evaluation.LoadGoldenQueries(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load golden queries")
	}
	if err := evaluation.ValidateGoldenQueries(queries); err != nil {
		log.Fatal().Err(err).Msg("invalid golden queries")
	}

	repo, cleanup, err := openBackend(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Search.Backend).Msg("failed to open search backend")
	}
	defer cleanup()

	searchService := services.NewCentreSearchService(repo, cfg.Search.Backend, nil)
	summary, err := evaluation.NewRunner(searchService, k).Run(ctx, queries)
	if err != nil {
		log.Fatal().Err(err).Msg("evaluation failed")
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	violations := evaluation.NewGuardrails(evaluation.GuardrailConfig{MinExactRatio: minExact}).Violations(summary)
	for _, v := range violations {
		log.Error().Str("backend", cfg.Search.Backend).Msg(v)
	}
	if len(violations) > 0 {
		cleanup()
		os.Exit(1)
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (repositories.CentreSearchRepository, func(), error) {
	if cfg.Search.Backend == config.BackendMemory {
		normalizer, err := utils.NewSubjectNormalizer(utils.GetSubjectConfigPath())
		if err != nil {
			log.Warn().Err(err).Msg("subject normalization disabled")
			normalizer = nil
		}
		centres, err := memory.LoadFixture(cfg.Search.FixturePath, normalizer)
		if err != nil {
			return nil, nil, err
		}
		return memory.NewStore(centres), func() {}, nil
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { pgClient.Close() }

	pgAdapter, err := database.NewCentreAdapter(pgClient.DB(), database.DialectPostgres)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if cfg.Search.Backend != config.BackendTypesense {
		return pgAdapter, cleanup, nil
	}

	tsClient, err := typesense.NewClient(ctx, &cfg.Typesense)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return search.NewTypesenseAdapter(tsClient, pgAdapter, nil), cleanup, nil
}
