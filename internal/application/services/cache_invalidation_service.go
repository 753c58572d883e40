package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
)

const invalidationTimeout = 5 * time.Second

// CacheInvalidationService drops cached directory reads when the data changes
type CacheInvalidationService struct {
	cache    providers.CacheProvider
	eventBus providers.EventBus
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  bool
}

// NewCacheInvalidationService creates a new cache invalidation service
func NewCacheInvalidationService(cache providers.CacheProvider, eventBus providers.EventBus) *CacheInvalidationService {
	ctx, cancel := context.WithCancel(context.Background())
	return &CacheInvalidationService{
		cache:    cache,
		eventBus: eventBus,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins listening for events and invalidating cache
func (s *CacheInvalidationService) Start() error {
	eventChan, err := s.eventBus.Subscribe(s.ctx, providers.EventChannelCentreUpdates)
	if err != nil {
		return fmt.Errorf("failed to subscribe to centre updates: %w", err)
	}

	s.started = true
	go s.processEvents(eventChan)
	log.Info().Str("channel", providers.EventChannelCentreUpdates).Msg("cache invalidation service started")
	return nil
}

// Stop stops the cache invalidation service and waits for the event loop to exit
func (s *CacheInvalidationService) Stop() {
	s.cancel()
	if s.started {
		<-s.done
	}
	log.Info().Msg("cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(eventChan <-chan *entities.CentreEvent) {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			s.handleEvent(event)
		}
	}
}

func (s *CacheInvalidationService) handleEvent(event *entities.CentreEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), invalidationTimeout)
	defer cancel()

	logger := log.With().
		Str("event_id", event.ID).
		Str("type", string(event.EventType)).
		Str("centre_id", event.CentreID).
		Logger()

	// A single centre can appear in any cached search page or filter list, so
	// every event drops the whole directory namespace.
	if err := s.InvalidateAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to invalidate directory cache")
		return
	}
	logger.Info().Msg("invalidated directory cache")
}

// InvalidateAll removes every cached directory read
func (s *CacheInvalidationService) InvalidateAll(ctx context.Context) error {
	pattern := providers.CentreCacheKeyPrefix + "*"
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("failed to invalidate pattern %s: %w", pattern, err)
	}
	return nil
}
