package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

type MockDirectoryReader struct {
	mock.Mock
}

func (m *MockDirectoryReader) Search(ctx context.Context, filters entities.SearchFilters) (*entities.SearchResult, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SearchResult), args.Error(1)
}

func (m *MockDirectoryReader) FilterOptions(ctx context.Context) (*entities.FilterOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FilterOptions), args.Error(1)
}

func TestCacheWarmingService_WarmCache(t *testing.T) {
	ctx := context.Background()
	reader := new(MockDirectoryReader)
	reader.On("FilterOptions", ctx).Return(&entities.FilterOptions{
		Enabled:  true,
		Levels:   []entities.RefItem{{ID: "l1", Name: "Primary 1"}},
		Subjects: []entities.RefItem{{ID: "s1", Name: "Mathematics"}},
	}, nil)
	reader.On("Search", ctx, entities.SearchFilters{Page: 1, Limit: 10}).
		Return(&entities.SearchResult{Pagination: entities.Pagination{TotalPages: 2}}, nil)
	reader.On("Search", ctx, entities.SearchFilters{Page: 2, Limit: 10}).
		Return(&entities.SearchResult{Pagination: entities.Pagination{TotalPages: 2}}, nil)
	reader.On("Search", ctx, entities.SearchFilters{Levels: []string{"Primary 1"}, Page: 1, Limit: 10}).
		Return(&entities.SearchResult{}, nil)
	reader.On("Search", ctx, entities.SearchFilters{Subjects: []string{"Mathematics"}, Page: 1, Limit: 10}).
		Return(nil, errors.New("store down"))

	failures := NewCacheWarmingService(reader, 5, 10).WarmCache(ctx)

	assert.Equal(t, 1, failures)
	reader.AssertExpectations(t)
	reader.AssertNotCalled(t, "Search", ctx, entities.SearchFilters{Page: 3, Limit: 10})
}

func TestCacheWarmingService_SkipsFacetsWhenFiltersDisabled(t *testing.T) {
	ctx := context.Background()
	reader := new(MockDirectoryReader)
	reader.On("FilterOptions", ctx).Return(&entities.FilterOptions{Enabled: false}, nil)
	reader.On("Search", ctx, entities.SearchFilters{Page: 1, Limit: 20}).
		Return(&entities.SearchResult{Pagination: entities.Pagination{TotalPages: 0}}, nil)

	failures := NewCacheWarmingService(reader, 0, 0).WarmCache(ctx)

	assert.Zero(t, failures)
	reader.AssertNumberOfCalls(t, "Search", 1)
}

func TestCacheWarmingService_WarmsThroughRealService(t *testing.T) {
	svc := newFixtureService(t)

	failures := NewCacheWarmingService(svc, 2, 2).WarmCache(context.Background())
	assert.Zero(t, failures)
}
