package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
)

// CachedCentreAdapter wraps a CentreSearchRepository with a read-through cache.
// Cache failures fall back to the wrapped repository.
type CachedCentreAdapter struct {
	adapter repositories.CentreSearchRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedCentreAdapter creates a new cached centre adapter
func NewCachedCentreAdapter(adapter repositories.CentreSearchRepository, cache providers.CacheProvider, metrics *observability.Metrics) *CachedCentreAdapter {
	return &CachedCentreAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

var _ repositories.CentreSearchRepository = (*CachedCentreAdapter)(nil)

// Cache TTLs (in seconds)
const (
	searchResultsTTL = 120
	centreByIDTTL    = 300
	filterOptionsTTL = 300
)

const asyncCacheWriteTimeout = 2 * time.Second

func searchCacheKey(cond query.Condition, window query.Window) string {
	sum := sha256.Sum256([]byte(query.Describe(cond)))
	return fmt.Sprintf("%ssearch:%s:%d:%d", providers.CentreCacheKeyPrefix, hex.EncodeToString(sum[:16]), window.Offset, window.Limit)
}

func centreCacheKey(id string) string {
	return providers.CentreCacheKeyPrefix + "centre:" + id
}

func filterCacheKey(name string) string {
	return providers.CentreCacheKeyPrefix + "filters:" + name
}

// SearchCentres returns a cached page when present
func (a *CachedCentreAdapter) SearchCentres(ctx context.Context, cond query.Condition, window query.Window) (*repositories.CentreSearchPage, error) {
	key := searchCacheKey(cond, window)

	var page repositories.CentreSearchPage
	if a.lookup(ctx, "search", key, &page) {
		return &page, nil
	}

	result, err := a.adapter.SearchCentres(ctx, cond, window)
	if err != nil {
		return nil, err
	}
	a.store(key, result, searchResultsTTL)
	return result, nil
}

// GetByID retrieves a centre by ID with caching. Misses are not cached.
func (a *CachedCentreAdapter) GetByID(ctx context.Context, id string) (*entities.Centre, error) {
	key := centreCacheKey(id)

	var centre entities.Centre
	if a.lookup(ctx, "centre", key, &centre) {
		return &centre, nil
	}

	result, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.store(key, result, centreByIDTTL)
	return result, nil
}

// CountOfferings returns the cached offering count
func (a *CachedCentreAdapter) CountOfferings(ctx context.Context) (int, error) {
	key := filterCacheKey("offering_count")

	var count int
	if a.lookup(ctx, "filters", key, &count) {
		return count, nil
	}

	count, err := a.adapter.CountOfferings(ctx)
	if err != nil {
		return 0, err
	}
	a.store(key, count, filterOptionsTTL)
	return count, nil
}

// ListOfferedLevels returns the cached offered levels
func (a *CachedCentreAdapter) ListOfferedLevels(ctx context.Context) ([]entities.Level, error) {
	key := filterCacheKey("levels")

	var levels []entities.Level
	if a.lookup(ctx, "filters", key, &levels) {
		return levels, nil
	}

	levels, err := a.adapter.ListOfferedLevels(ctx)
	if err != nil {
		return nil, err
	}
	a.store(key, levels, filterOptionsTTL)
	return levels, nil
}

// ListOfferedSubjects returns the cached offered subjects
func (a *CachedCentreAdapter) ListOfferedSubjects(ctx context.Context) ([]entities.Subject, error) {
	key := filterCacheKey("subjects")

	var subjects []entities.Subject
	if a.lookup(ctx, "filters", key, &subjects) {
		return subjects, nil
	}

	subjects, err := a.adapter.ListOfferedSubjects(ctx)
	if err != nil {
		return nil, err
	}
	a.store(key, subjects, filterOptionsTTL)
	return subjects, nil
}

// lookup decodes a cached value into dest and reports whether it was usable
func (a *CachedCentreAdapter) lookup(ctx context.Context, family, key string, dest interface{}) bool {
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		observability.RecordCacheMiss(ctx, a.metrics, family)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to decode cached value")
		observability.RecordCacheMiss(ctx, a.metrics, family)
		return false
	}
	observability.RecordCacheHit(ctx, a.metrics, family)
	return true
}

// store writes value in the background so the response is not delayed
func (a *CachedCentreAdapter) store(key string, value interface{}, ttl int) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to encode value for cache")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncCacheWriteTimeout)
		defer cancel()
		if err := a.cache.Set(ctx, key, data, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to write cache")
		}
	}()
}
