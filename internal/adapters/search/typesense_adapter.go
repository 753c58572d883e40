package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
	tsclient "github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/tuitioncentres/backend/pkg/errors"
)

const (
	sortOrder        = "name_sort:asc,id_sort:asc"
	indexConcurrency = 8
)

// TypesenseAdapter serves centre search from Typesense. Single-centre reads and
// filter reference data are answered by the primary store.
type TypesenseAdapter struct {
	client  *tsclient.Client
	primary repositories.CentreSearchRepository
	metrics *observability.Metrics
}

var (
	_ repositories.CentreSearchRepository = (*TypesenseAdapter)(nil)
	_ repositories.CentreIndexRepository  = (*TypesenseAdapter)(nil)
)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client, primary repositories.CentreSearchRepository, metrics *observability.Metrics) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, primary: primary, metrics: metrics}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context, reset bool) error {
	if err := a.client.InitSchema(ctx, reset); err != nil {
		return apperrors.NewExternalError("failed to initialise search index", err)
	}
	return nil
}

// Index upserts centres into the collection
func (a *TypesenseAdapter) Index(ctx context.Context, centres []*entities.Centre) error {
	for _, c := range centres {
		if err := c.Validate(); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(indexConcurrency)

	documents := a.client.Client().Collection(tsclient.CentresCollection).Documents()
	for _, c := range centres {
		doc := centreDocument(c)
		id := c.ID
		g.Go(func() error {
			if _, err := documents.Upsert(ctx, doc); err != nil {
				return apperrors.NewExternalError("failed to index centre "+id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Delete removes a centre from the collection
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	_, err := a.client.Client().Collection(tsclient.CentresCollection).Document(id).Delete(ctx)
	if err != nil {
		return apperrors.NewExternalError("failed to delete centre from index", err)
	}
	return nil
}

// SearchCentres runs cond against the collection
func (a *TypesenseAdapter) SearchCentres(ctx context.Context, cond query.Condition, window query.Window) (*repositories.CentreSearchPage, error) {
	plan, err := planSearch(cond)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to compile search condition", err)
	}
	if plan.MatchNone {
		return &repositories.CentreSearchPage{Centres: []*entities.Centre{}}, nil
	}

	params := searchParams(plan, window)

	start := time.Now()
	result, err := a.client.Client().Collection(tsclient.CentresCollection).Documents().Search(ctx, params)
	observability.RecordDBMetric(ctx, a.metrics, "typesense_search", time.Since(start))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to search centres", err)
	}

	return pageFromResult(result)
}

// pageFromResult decodes every hit. A hit that cannot be decoded fails the whole
// page so rows never disagree with the reported total.
func pageFromResult(result *api.SearchResult) (*repositories.CentreSearchPage, error) {
	page := &repositories.CentreSearchPage{Centres: []*entities.Centre{}}
	if result == nil {
		return page, nil
	}
	if result.Found != nil {
		page.Total = *result.Found
	}
	if result.Hits == nil {
		return page, nil
	}
	for i, hit := range *result.Hits {
		if hit.Document == nil {
			return nil, apperrors.NewExternalError("failed to decode search hit", fmt.Errorf("hit %d has no document", i))
		}
		c, err := decodeCentre(*hit.Document)
		if err != nil {
			return nil, apperrors.NewExternalError("failed to decode search hit", err)
		}
		page.Centres = append(page.Centres, c)
	}
	return page, nil
}

func searchParams(plan searchPlan, window query.Window) *api.SearchCollectionParams {
	limit := window.Limit
	if limit < 1 {
		limit = query.DefaultLimit
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(plan.Q),
		QueryBy: pointer.String("name"),
		SortBy:  pointer.String(sortOrder),
		Page:    pointer.Int(window.Offset/limit + 1),
		PerPage: pointer.Int(limit),
	}
	if len(plan.QueryBy) > 0 {
		modes := make([]string, len(plan.QueryBy))
		for i := range modes {
			modes[i] = "always"
		}
		params.QueryBy = pointer.String(strings.Join(plan.QueryBy, ","))
		params.Infix = pointer.String(strings.Join(modes, ","))
		params.NumTypos = pointer.String("0")
		params.Prefix = pointer.String("false")
		// every word must match; never retry with tokens dropped
		params.DropTokensThreshold = pointer.Int(0)
	}
	if filter := plan.FilterBy(); filter != "" {
		params.FilterBy = pointer.String(filter)
	}
	return params
}

// GetByID reads from the primary store
func (a *TypesenseAdapter) GetByID(ctx context.Context, id string) (*entities.Centre, error) {
	return a.primary.GetByID(ctx, id)
}

// CountOfferings reads from the primary store
func (a *TypesenseAdapter) CountOfferings(ctx context.Context) (int, error) {
	return a.primary.CountOfferings(ctx)
}

// ListOfferedLevels reads from the primary store
func (a *TypesenseAdapter) ListOfferedLevels(ctx context.Context) ([]entities.Level, error) {
	return a.primary.ListOfferedLevels(ctx)
}

// ListOfferedSubjects reads from the primary store
func (a *TypesenseAdapter) ListOfferedSubjects(ctx context.Context) ([]entities.Subject, error) {
	return a.primary.ListOfferedSubjects(ctx)
}
