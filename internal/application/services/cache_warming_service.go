package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

// DirectoryReader is the read side of the directory that warming replays
type DirectoryReader interface {
	Search(ctx context.Context, filters entities.SearchFilters) (*entities.SearchResult, error)
	FilterOptions(ctx context.Context) (*entities.FilterOptions, error)
}

// CacheWarmingService replays the most common directory reads through a cached
// reader so the first visitors after a deploy or reload hit a warm cache
type CacheWarmingService struct {
	reader DirectoryReader
	pages  int
	limit  int
}

// NewCacheWarmingService creates a warmer for the first pages of the unfiltered
// listing at the given page size
func NewCacheWarmingService(reader DirectoryReader, pages, limit int) *CacheWarmingService {
	if pages <= 0 {
		pages = 3
	}
	if limit <= 0 {
		limit = 20
	}
	return &CacheWarmingService{reader: reader, pages: pages, limit: limit}
}

// WarmCache loads filter options, the listing pages and the first page for every
// offered level and subject. Failures are logged and counted, never fatal.
func (s *CacheWarmingService) WarmCache(ctx context.Context) int {
	start := time.Now()
	failures := 0

	options, err := s.reader.FilterOptions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to warm filter options")
		failures++
	}

	for page := 1; page <= s.pages; page++ {
		res, err := s.reader.Search(ctx, entities.SearchFilters{Page: page, Limit: s.limit})
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("failed to warm listing page")
			failures++
			break
		}
		if page >= res.Pagination.TotalPages {
			break
		}
	}

	if options != nil && options.Enabled {
		for _, level := range options.Levels {
			if _, err := s.reader.Search(ctx, entities.SearchFilters{Levels: []string{level.Name}, Page: 1, Limit: s.limit}); err != nil {
				failures++
			}
		}
		for _, subject := range options.Subjects {
			if _, err := s.reader.Search(ctx, entities.SearchFilters{Subjects: []string{subject.Name}, Page: 1, Limit: s.limit}); err != nil {
				failures++
			}
		}
	}

	log.Info().Int("failures", failures).Dur("duration", time.Since(start)).Msg("cache warming completed")
	return failures
}

// StartPeriodicWarming warms once, then every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	s.WarmCache(ctx)

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stopping cache warming")
				return
			case <-ticker.C:
				s.WarmCache(ctx)
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("started periodic cache warming")
}
