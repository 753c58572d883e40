package memory

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/pkg/utils"
)

// Fixture is the YAML layout of a directory snapshot
type Fixture struct {
	Centres []FixtureCentre `yaml:"centres"`
}

// FixtureCentre describes one centre. Each offering group expands to every
// level and subject pair it lists.
type FixtureCentre struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	Location       string          `yaml:"location"`
	WhatsAppNumber string          `yaml:"whatsapp_number"`
	Website        string          `yaml:"website"`
	CreatedAt      time.Time       `yaml:"created_at"`
	UpdatedAt      time.Time       `yaml:"updated_at"`
	Offerings      []FixtureOffers `yaml:"offerings"`
}

// FixtureOffers is a group of levels taught in a group of subjects
type FixtureOffers struct {
	Levels   []string `yaml:"levels"`
	Subjects []string `yaml:"subjects"`
}

// LoadFixture reads a fixture file into centres. Coarse level labels are
// expanded and, when normalizer is set, subject labels are canonicalised;
// labels that are not academic subjects are dropped.
func LoadFixture(path string, normalizer *utils.SubjectNormalizer) ([]*entities.Centre, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data, normalizer)
}

// ParseFixture decodes fixture YAML into centres
func ParseFixture(data []byte, normalizer *utils.SubjectNormalizer) ([]*entities.Centre, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}

	now := time.Now().UTC()
	centres := make([]*entities.Centre, 0, len(fx.Centres))
	for i, fc := range fx.Centres {
		name := strings.TrimSpace(fc.Name)
		if name == "" {
			return nil, fmt.Errorf("fixture centre %d has no name", i)
		}

		c := &entities.Centre{
			ID:             strings.TrimSpace(fc.ID),
			Name:           name,
			Location:       strings.TrimSpace(fc.Location),
			WhatsAppNumber: strings.TrimSpace(fc.WhatsAppNumber),
			CreatedAt:      fc.CreatedAt,
			UpdatedAt:      fc.UpdatedAt,
		}
		if c.ID == "" {
			c.ID = entities.CentreID(name)
		}
		if website := strings.TrimSpace(fc.Website); website != "" {
			c.Website = &website
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = c.CreatedAt
		}

		for _, group := range fc.Offerings {
			subjects := group.Subjects
			if normalizer != nil {
				subjects = normalizer.NormalizeAll(subjects)
			}
			for _, level := range query.ExpandLevelNames(group.Levels) {
				for _, subject := range subjects {
					if subject = strings.TrimSpace(subject); subject == "" {
						continue
					}
					c.Offerings = append(c.Offerings, entities.NewOffering(c.ID, level, subject))
				}
			}
		}
		c.Levels, c.Subjects = entities.FlattenOfferings(c.Offerings)
		centres = append(centres, c)
	}
	return centres, nil
}
