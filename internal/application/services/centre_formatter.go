package services

import (
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/pkg/utils"
)

// FormatCentre projects a centre to its public shape. Levels and subjects are
// emitted once each, in the order the store returned them.
func FormatCentre(c *entities.Centre) entities.PublicCentre {
	out := entities.PublicCentre{
		ID:             c.ID,
		Name:           c.Name,
		Location:       c.Location,
		WhatsAppNumber: c.WhatsAppNumber,
		WhatsAppLink:   utils.ContactLink(c.WhatsAppNumber),
		Levels:         make([]entities.RefItem, 0, len(c.Levels)),
		Subjects:       make([]entities.RefItem, 0, len(c.Subjects)),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.Website != nil && *c.Website != "" {
		website := *c.Website
		out.Website = &website
	}

	seen := make(map[string]struct{}, len(c.Levels))
	for _, l := range c.Levels {
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		out.Levels = append(out.Levels, entities.RefItem{ID: l.ID, Name: l.Name})
	}

	seen = make(map[string]struct{}, len(c.Subjects))
	for _, s := range c.Subjects {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out.Subjects = append(out.Subjects, entities.RefItem{ID: s.ID, Name: s.Name})
	}
	return out
}

// FormatCentres formats a page of centres; the result is never nil
func FormatCentres(centres []*entities.Centre) []entities.PublicCentre {
	out := make([]entities.PublicCentre, 0, len(centres))
	for _, c := range centres {
		out = append(out, FormatCentre(c))
	}
	return out
}
