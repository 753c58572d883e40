package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
)

// DirectoryIngestionSummary counts what a load or reindex touched
type DirectoryIngestionSummary struct {
	CentresLoaded   int `json:"centres_loaded"`
	CentresSkipped  int `json:"centres_skipped"`
	OfferingsLoaded int `json:"offerings_loaded"`
	CentresIndexed  int `json:"centres_indexed"`
}

// DirectoryIngestionService writes centres into the primary store, mirrors them
// into the search index and announces the change so API caches are dropped.
type DirectoryIngestionService struct {
	store    repositories.CentreRepository
	index    repositories.CentreIndexRepository
	eventBus providers.EventBus
}

// NewDirectoryIngestionService creates the service. index and eventBus may be nil.
func NewDirectoryIngestionService(
	store repositories.CentreRepository,
	index repositories.CentreIndexRepository,
	eventBus providers.EventBus,
) *DirectoryIngestionService {
	return &DirectoryIngestionService{
		store:    store,
		index:    index,
		eventBus: eventBus,
	}
}

// Load saves centres into the store, replacing everything first when reset is set.
// Centres that fail Validate are skipped. The index is refreshed from the store afterwards.
func (s *DirectoryIngestionService) Load(ctx context.Context, centres []*entities.Centre, reset bool) (*DirectoryIngestionSummary, error) {
	if s.store == nil {
		return nil, fmt.Errorf("centre store not configured")
	}

	summary := &DirectoryIngestionSummary{}

	if reset {
		if err := s.store.Reset(ctx); err != nil {
			return summary, err
		}
		log.Info().Msg("cleared directory before load")
	}

	for _, centre := range centres {
		if centre == nil {
			summary.CentresSkipped++
			continue
		}
		if err := centre.Validate(); err != nil {
			log.Warn().Err(err).Msg("skipping centre")
			summary.CentresSkipped++
			continue
		}
		if err := s.store.Save(ctx, centre); err != nil {
			return summary, fmt.Errorf("failed to save centre %q: %w", centre.Name, err)
		}
		summary.CentresLoaded++
		summary.OfferingsLoaded += len(centre.Offerings)
	}

	if s.index != nil {
		indexed, err := s.reindex(ctx, false)
		summary.CentresIndexed = indexed
		if err != nil {
			return summary, err
		}
	}

	s.announce(ctx, summary.CentresLoaded)
	return summary, nil
}

// Reindex rebuilds the search index from the store
func (s *DirectoryIngestionService) Reindex(ctx context.Context, reset bool) (*DirectoryIngestionSummary, error) {
	if s.store == nil || s.index == nil {
		return nil, fmt.Errorf("centre store and search index must both be configured")
	}

	indexed, err := s.reindex(ctx, reset)
	summary := &DirectoryIngestionSummary{CentresIndexed: indexed}
	if err != nil {
		return summary, err
	}

	s.announce(ctx, indexed)
	return summary, nil
}

func (s *DirectoryIngestionService) reindex(ctx context.Context, reset bool) (int, error) {
	if err := s.index.InitSchema(ctx, reset); err != nil {
		return 0, err
	}

	centres, err := s.store.ListWithOfferings(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.index.Index(ctx, centres); err != nil {
		return 0, err
	}

	log.Info().Int("centres", len(centres)).Bool("reset", reset).Msg("search index refreshed")
	return len(centres), nil
}

// announce is best effort: a missed event only delays cache expiry to the TTL
func (s *DirectoryIngestionService) announce(ctx context.Context, count int) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewCentreEvent(entities.CentreEventTypeReloaded, "", count)
	if err := s.eventBus.Publish(ctx, providers.EventChannelCentreUpdates, event); err != nil {
		log.Warn().Err(err).Msg("failed to publish directory reload event")
	}
}
