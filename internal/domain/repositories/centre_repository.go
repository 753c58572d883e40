package repositories

import (
	"context"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
)

// CentreSearchPage is one window of matching centres plus the total number of
// centres matching the same condition
type CentreSearchPage struct {
	Centres []*entities.Centre `json:"centres"`
	Total   int                `json:"total"`
}

// CentreSearchRepository executes condition trees against a centre store
type CentreSearchRepository interface {
	// SearchCentres returns the centres matching cond ordered by name then id,
	// restricted to window, with their flattened levels and subjects populated.
	// Total counts every match regardless of window.
	SearchCentres(ctx context.Context, cond query.Condition, window query.Window) (*CentreSearchPage, error)

	// GetByID retrieves a centre by ID
	GetByID(ctx context.Context, id string) (*entities.Centre, error)

	// CountOfferings returns the number of offering rows
	CountOfferings(ctx context.Context) (int, error)

	// ListOfferedLevels returns levels used by at least one offering, by name
	ListOfferedLevels(ctx context.Context) ([]entities.Level, error)

	// ListOfferedSubjects returns subjects used by at least one offering, by name
	ListOfferedSubjects(ctx context.Context) ([]entities.Subject, error)
}

// CentreRepository is the writable store behind the directory
type CentreRepository interface {
	CentreSearchRepository

	// Save inserts or replaces a centre with its offerings, deriving the
	// flattened level and subject links from the offerings
	Save(ctx context.Context, centre *entities.Centre) error

	// ListWithOfferings returns every centre with its offerings, by name
	ListWithOfferings(ctx context.Context) ([]*entities.Centre, error)

	// Reset removes all centres, offerings, levels and subjects
	Reset(ctx context.Context) error
}

// CentreIndexRepository maintains a search index of centres (e.g. Typesense)
type CentreIndexRepository interface {
	// InitSchema creates the index, dropping an existing one when reset is set
	InitSchema(ctx context.Context, reset bool) error

	// Index upserts centres into the index
	Index(ctx context.Context, centres []*entities.Centre) error

	// Delete removes a centre from the index
	Delete(ctx context.Context, id string) error
}
