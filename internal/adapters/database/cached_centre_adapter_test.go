package database

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
)

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("redis down")
	}
	v, ok := c.data[key]
	if !ok {
		return nil, providers.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type mockSearchRepo struct {
	mock.Mock
}

func (m *mockSearchRepo) SearchCentres(ctx context.Context, cond query.Condition, window query.Window) (*repositories.CentreSearchPage, error) {
	args := m.Called(ctx, cond, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.CentreSearchPage), args.Error(1)
}

func (m *mockSearchRepo) GetByID(ctx context.Context, id string) (*entities.Centre, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Centre), args.Error(1)
}

func (m *mockSearchRepo) CountOfferings(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockSearchRepo) ListOfferedLevels(ctx context.Context) ([]entities.Level, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.Level), args.Error(1)
}

func (m *mockSearchRepo) ListOfferedSubjects(ctx context.Context) ([]entities.Subject, error) {
	args := m.Called(ctx)
	return args.Get(0).([]entities.Subject), args.Error(1)
}

func TestCachedCentreAdapter_SearchIsServedFromCacheAfterFirstCall(t *testing.T) {
	repo := new(mockSearchRepo)
	cache := newFakeCache()
	adapter := NewCachedCentreAdapter(repo, cache, nil)

	cond := query.Build(entities.SearchFilters{Subjects: []string{"English"}})
	window := query.NewWindow(1, 20)
	page := &repositories.CentreSearchPage{
		Centres: []*entities.Centre{{ID: "c1", Name: "Beta", Levels: []entities.Level{}, Subjects: []entities.Subject{}}},
		Total:   1,
	}
	repo.On("SearchCentres", mock.Anything, cond, window).Return(page, nil).Once()

	first, err := adapter.SearchCentres(context.Background(), cond, window)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total)

	key := searchCacheKey(cond, window)
	require.Eventually(t, func() bool { return cache.has(key) }, time.Second, 5*time.Millisecond)

	second, err := adapter.SearchCentres(context.Background(), cond, window)
	require.NoError(t, err)
	assert.Equal(t, "Beta", second.Centres[0].Name)
	repo.AssertExpectations(t)
}

func TestCachedCentreAdapter_KeysDependOnConditionAndWindow(t *testing.T) {
	a := query.Build(entities.SearchFilters{Subjects: []string{"English", "Mathematics"}})
	b := query.Build(entities.SearchFilters{Subjects: []string{"Mathematics", "English"}})
	c := query.Build(entities.SearchFilters{Subjects: []string{"Mathematics"}})

	w1 := query.NewWindow(1, 20)
	w2 := query.NewWindow(2, 20)

	assert.Equal(t, searchCacheKey(a, w1), searchCacheKey(b, w1))
	assert.NotEqual(t, searchCacheKey(a, w1), searchCacheKey(c, w1))
	assert.NotEqual(t, searchCacheKey(a, w1), searchCacheKey(a, w2))
	assert.True(t, strings.HasPrefix(searchCacheKey(a, w1), providers.CentreCacheKeyPrefix))
}

func TestCachedCentreAdapter_CacheFailureFallsBackToRepository(t *testing.T) {
	repo := new(mockSearchRepo)
	cache := newFakeCache()
	cache.failGet = true
	adapter := NewCachedCentreAdapter(repo, cache, nil)

	repo.On("CountOfferings", mock.Anything).Return(7, nil).Twice()

	for i := 0; i < 2; i++ {
		count, err := adapter.CountOfferings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 7, count)
	}
	repo.AssertExpectations(t)
}

func TestCachedCentreAdapter_ErrorsAreNotCached(t *testing.T) {
	repo := new(mockSearchRepo)
	cache := newFakeCache()
	adapter := NewCachedCentreAdapter(repo, cache, nil)

	repo.On("GetByID", mock.Anything, "c1").Return(nil, errors.New("boom")).Once()

	_, err := adapter.GetByID(context.Background(), "c1")
	require.Error(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.False(t, cache.has(centreCacheKey("c1")))
}

func TestCachedCentreAdapter_FilterLists(t *testing.T) {
	repo := new(mockSearchRepo)
	cache := newFakeCache()
	adapter := NewCachedCentreAdapter(repo, cache, nil)

	levels := []entities.Level{{ID: "l1", Name: "Primary 1"}}
	repo.On("ListOfferedLevels", mock.Anything).Return(levels, nil).Once()
	repo.On("ListOfferedSubjects", mock.Anything).Return([]entities.Subject{{ID: "s1", Name: "Art"}}, nil).Once()

	got, err := adapter.ListOfferedLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, levels, got)
	require.Eventually(t, func() bool { return cache.has(filterCacheKey("levels")) }, time.Second, 5*time.Millisecond)

	got, err = adapter.ListOfferedLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, levels, got)

	subjects, err := adapter.ListOfferedSubjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, subjects, 1)
	repo.AssertExpectations(t)
}
