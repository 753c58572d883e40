package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

const pairSeparator = "|"

// pairToken encodes one offering row as a single filterable term. Valid labels
// never contain pairSeparator, so the token splits back unambiguously.
func pairToken(level, subject string) string {
	return level + pairSeparator + subject
}

// centreDocument builds the indexed form of a centre
func centreDocument(c *entities.Centre) map[string]interface{} {
	levels, subjects := c.Levels, c.Subjects
	if len(c.Offerings) > 0 {
		levels, subjects = entities.FlattenOfferings(c.Offerings)
	}

	pairs := make([]string, 0, len(c.Offerings))
	seen := make(map[string]struct{}, len(c.Offerings))
	for _, o := range c.Offerings {
		token := pairToken(o.Level.Name, o.Subject.Name)
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		pairs = append(pairs, token)
	}

	doc := map[string]interface{}{
		"id":              c.ID,
		"name":            c.Name,
		"location":        c.Location,
		"name_sort":       c.Name,
		"id_sort":         c.ID,
		"whatsapp_number": c.WhatsAppNumber,
		"levels":          levelNames(levels),
		"level_ids":       levelIDs(levels),
		"subjects":        subjectNames(subjects),
		"subject_ids":     subjectIDs(subjects),
		"offerings":       pairs,
		"offering_count":  len(pairs),
		"created_at":      c.CreatedAt.Unix(),
		"updated_at":      c.UpdatedAt.Unix(),
	}
	if c.Website != nil {
		doc["website"] = *c.Website
	}
	return doc
}

// decodeCentre rebuilds a centre from a search hit document
func decodeCentre(doc map[string]interface{}) (*entities.Centre, error) {
	id, ok := doc["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("document has no id")
	}

	c := &entities.Centre{
		ID:             id,
		Name:           stringField(doc, "name"),
		Location:       stringField(doc, "location"),
		WhatsAppNumber: stringField(doc, "whatsapp_number"),
		CreatedAt:      unixField(doc, "created_at"),
		UpdatedAt:      unixField(doc, "updated_at"),
	}
	if website := stringField(doc, "website"); website != "" {
		c.Website = &website
	}

	levelNames, levelIDs := stringsField(doc, "levels"), stringsField(doc, "level_ids")
	c.Levels = make([]entities.Level, 0, len(levelNames))
	for i, name := range levelNames {
		c.Levels = append(c.Levels, entities.Level{ID: idAt(levelIDs, i, entities.LevelID(name)), Name: name})
	}

	subjectNames, subjectIDs := stringsField(doc, "subjects"), stringsField(doc, "subject_ids")
	c.Subjects = make([]entities.Subject, 0, len(subjectNames))
	for i, name := range subjectNames {
		c.Subjects = append(c.Subjects, entities.Subject{ID: idAt(subjectIDs, i, entities.SubjectID(name)), Name: name})
	}
	return c, nil
}

func stringField(doc map[string]interface{}, key string) string {
	s, _ := doc[key].(string)
	return strings.TrimSpace(s)
}

func stringsField(doc map[string]interface{}, key string) []string {
	switch v := doc[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func unixField(doc map[string]interface{}, key string) time.Time {
	switch v := doc[key].(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC()
	case int64:
		return time.Unix(v, 0).UTC()
	case int:
		return time.Unix(int64(v), 0).UTC()
	default:
		return time.Time{}
	}
}

func idAt(ids []string, i int, fallback string) string {
	if i < len(ids) && ids[i] != "" {
		return ids[i]
	}
	return fallback
}

func levelNames(levels []entities.Level) []string {
	out := make([]string, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.Name)
	}
	return out
}

func levelIDs(levels []entities.Level) []string {
	out := make([]string, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.ID)
	}
	return out
}

func subjectNames(subjects []entities.Subject) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, s.Name)
	}
	return out
}

func subjectIDs(subjects []entities.Subject) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, s.ID)
	}
	return out
}
