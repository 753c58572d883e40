// Package memory holds the directory in process memory. It serves the memory
// search backend and acts as the reference executor in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
	apperrors "github.com/zatekoja/tuitioncentres/backend/pkg/errors"
)

// Store is an in-memory CentreRepository. Centres are kept sorted by name then id.
type Store struct {
	mu      sync.RWMutex
	centres []*entities.Centre
	byID    map[string]*entities.Centre
}

var _ repositories.CentreRepository = (*Store)(nil)

// NewStore creates a store holding centres
func NewStore(centres []*entities.Centre) *Store {
	s := &Store{}
	s.Replace(centres)
	return s
}

// Replace swaps the whole data set
func (s *Store) Replace(centres []*entities.Centre) {
	prepared := make([]*entities.Centre, 0, len(centres))
	byID := make(map[string]*entities.Centre, len(centres))
	for _, c := range centres {
		stored := prepare(c)
		if _, dup := byID[stored.ID]; dup {
			prepared = removeByID(prepared, stored.ID)
		}
		byID[stored.ID] = stored
		prepared = append(prepared, stored)
	}
	sortCentres(prepared)

	s.mu.Lock()
	s.centres = prepared
	s.byID = byID
	s.mu.Unlock()
}

// SearchCentres evaluates cond over every centre
func (s *Store) SearchCentres(ctx context.Context, cond query.Condition, window query.Window) (*repositories.CentreSearchPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*entities.Centre
	for _, c := range s.centres {
		ok, err := matches(cond, c)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to evaluate search condition", err)
		}
		if ok {
			matched = append(matched, c)
		}
	}

	page := &repositories.CentreSearchPage{Centres: []*entities.Centre{}, Total: len(matched)}
	if window.Offset >= len(matched) || window.Limit < 1 {
		return page, nil
	}
	end := window.Offset + window.Limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, c := range matched[window.Offset:end] {
		page.Centres = append(page.Centres, clone(c))
	}
	return page, nil
}

// GetByID retrieves a centre by ID
func (s *Store) GetByID(ctx context.Context, id string) (*entities.Centre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Tuition centre not found")
	}
	return clone(c), nil
}

// CountOfferings returns the number of offering rows
func (s *Store) CountOfferings(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, c := range s.centres {
		count += len(c.Offerings)
	}
	return count, nil
}

// ListOfferedLevels returns levels used by at least one offering, by name
func (s *Store) ListOfferedLevels(ctx context.Context) ([]entities.Level, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]entities.Level{}
	for _, c := range s.centres {
		for _, o := range c.Offerings {
			seen[o.Level.ID] = o.Level
		}
	}
	levels := make([]entities.Level, 0, len(seen))
	for _, l := range seen {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].Name < levels[j].Name })
	return levels, nil
}

// ListOfferedSubjects returns subjects used by at least one offering, by name
func (s *Store) ListOfferedSubjects(ctx context.Context) ([]entities.Subject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]entities.Subject{}
	for _, c := range s.centres {
		for _, o := range c.Offerings {
			seen[o.Subject.ID] = o.Subject
		}
	}
	subjects := make([]entities.Subject, 0, len(seen))
	for _, sub := range seen {
		subjects = append(subjects, sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

// Save inserts or replaces a centre
func (s *Store) Save(ctx context.Context, centre *entities.Centre) error {
	stored := prepare(centre)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[stored.ID]; ok {
		s.centres = removeByID(s.centres, stored.ID)
	}
	s.byID[stored.ID] = stored
	s.centres = append(s.centres, stored)
	sortCentres(s.centres)
	return nil
}

// ListWithOfferings returns every centre with its offerings, by name
func (s *Store) ListWithOfferings(ctx context.Context) ([]*entities.Centre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Centre, 0, len(s.centres))
	for _, c := range s.centres {
		out = append(out, clone(c))
	}
	return out, nil
}

// Reset removes every centre
func (s *Store) Reset(ctx context.Context) error {
	s.Replace(nil)
	return nil
}

// prepare copies c, deduplicates its offerings and derives the flattened links.
// A centre without an id is given a new one, written back to c.
func prepare(c *entities.Centre) *entities.Centre {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	stored := *c
	seen := make(map[string]struct{}, len(c.Offerings))
	stored.Offerings = make([]entities.Offering, 0, len(c.Offerings))
	for _, o := range c.Offerings {
		key := o.Level.Name + "\x00" + o.Subject.Name
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		o.CentreID = stored.ID
		o.ID = entities.OfferingID(stored.ID, o.Level.ID, o.Subject.ID)
		stored.Offerings = append(stored.Offerings, o)
	}
	stored.Levels, stored.Subjects = entities.FlattenOfferings(stored.Offerings)
	return &stored
}

func clone(c *entities.Centre) *entities.Centre {
	out := *c
	out.Levels = append([]entities.Level{}, c.Levels...)
	out.Subjects = append([]entities.Subject{}, c.Subjects...)
	out.Offerings = append([]entities.Offering(nil), c.Offerings...)
	return &out
}

func sortCentres(centres []*entities.Centre) {
	sort.Slice(centres, func(i, j int) bool {
		if centres[i].Name != centres[j].Name {
			return centres[i].Name < centres[j].Name
		}
		return centres[i].ID < centres[j].ID
	})
}

func removeByID(centres []*entities.Centre, id string) []*entities.Centre {
	out := centres[:0]
	for _, c := range centres {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
