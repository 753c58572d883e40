package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
)

// FiltersDisabledReason is reported when no offerings exist yet
const FiltersDisabledReason = "Filters temporarily disabled. No offerings data yet."

// CentreSearchService answers directory searches: it builds the match
// condition, runs it on the configured executor, then formats and paginates.
type CentreSearchService struct {
	repo    repositories.CentreSearchRepository
	backend string
	metrics *observability.Metrics
}

// NewCentreSearchService creates a new search service. backend labels metrics.
func NewCentreSearchService(repo repositories.CentreSearchRepository, backend string, metrics *observability.Metrics) *CentreSearchService {
	return &CentreSearchService{repo: repo, backend: backend, metrics: metrics}
}

// Search returns one page of centres matching filters. Executor failures are
// returned unchanged; an empty match is not an error.
func (s *CentreSearchService) Search(ctx context.Context, filters entities.SearchFilters) (*entities.SearchResult, error) {
	ctx, span := observability.StartSpan(ctx, "CentreSearchService.Search")
	defer span.End()

	if filters.Page < 1 {
		filters.Page = query.DefaultPage
	}
	if filters.Limit < 1 {
		filters.Limit = query.DefaultLimit
	}

	cond := query.Build(filters)
	span.SetAttributes(
		attribute.String("search.term", strings.TrimSpace(filters.Search)),
		attribute.StringSlice("search.levels", filters.Levels),
		attribute.StringSlice("search.subjects", filters.Subjects),
		attribute.Int("search.page", filters.Page),
		attribute.Int("search.limit", filters.Limit),
		attribute.String("search.backend", s.backend),
	)

	logger := observability.LoggerFromContext(ctx)
	page, err := s.repo.SearchCentres(ctx, cond, query.NewWindow(filters.Page, filters.Limit))
	if err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Str("condition", query.Describe(cond)).Msg("centre search failed")
		return nil, err
	}

	meta := query.Paginate(page.Total, filters.Page, filters.Limit)
	span.SetAttributes(attribute.Int("search.total", page.Total))
	observability.RecordSearchResult(ctx, s.metrics, s.backend, page.Total)
	logger.Debug().
		Str("condition", query.Describe(cond)).
		Int("total", page.Total).
		Int("returned", len(page.Centres)).
		Msg("centre search")

	return &entities.SearchResult{
		Data:       FormatCentres(page.Centres),
		Pagination: meta.Metadata(),
	}, nil
}

// GetCentre returns one centre in its public shape
func (s *CentreSearchService) GetCentre(ctx context.Context, id string) (*entities.PublicCentre, error) {
	ctx, span := observability.StartSpan(ctx, "CentreSearchService.GetCentre")
	defer span.End()
	span.SetAttributes(attribute.String("centre.id", id))

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	out := FormatCentre(c)
	return &out, nil
}

// FilterOptions lists the levels and subjects that appear in at least one
// offering. Filtering is reported as disabled until offerings exist.
func (s *CentreSearchService) FilterOptions(ctx context.Context) (*entities.FilterOptions, error) {
	ctx, span := observability.StartSpan(ctx, "CentreSearchService.FilterOptions")
	defer span.End()

	count, err := s.repo.CountOfferings(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if count == 0 {
		return &entities.FilterOptions{
			Enabled:  false,
			Levels:   []entities.RefItem{},
			Subjects: []entities.RefItem{},
			Reason:   FiltersDisabledReason,
		}, nil
	}

	var (
		levels   []entities.Level
		subjects []entities.Subject
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		levels, err = s.repo.ListOfferedLevels(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		subjects, err = s.repo.ListOfferedSubjects(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	opts := &entities.FilterOptions{
		Enabled:  true,
		Levels:   make([]entities.RefItem, 0, len(levels)),
		Subjects: make([]entities.RefItem, 0, len(subjects)),
	}
	for _, l := range levels {
		opts.Levels = append(opts.Levels, entities.RefItem{ID: l.ID, Name: l.Name})
	}
	for _, sub := range subjects {
		opts.Subjects = append(opts.Subjects, entities.RefItem{ID: sub.ID, Name: sub.Name})
	}
	return opts, nil
}
