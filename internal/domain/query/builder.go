package query

import (
	"strings"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

// Build translates search filters into a condition tree.
//
// Text search matches name or location. Levels (expanded) and subjects collapse
// into one OfferingMatch, so both constraints must hold on the same offering.
// When neither is given no offering clause is added and centres without
// offerings stay matchable. The result is always an And; with no filters it is
// empty and matches everything.
func Build(filters entities.SearchFilters) Condition {
	var clauses []Condition

	if term := strings.TrimSpace(filters.Search); term != "" {
		clauses = append(clauses, Or{Clauses: []Condition{
			TextMatch{Field: FieldName, Term: term},
			TextMatch{Field: FieldLocation, Term: term},
		}})
	}

	levels := ExpandLevelNames(filters.Levels)
	subjects := cleanNames(filters.Subjects)
	if len(levels) > 0 || len(subjects) > 0 {
		clauses = append(clauses, OfferingMatch{Levels: levels, Subjects: subjects})
	}

	return And{Clauses: clauses}
}

// cleanNames trims, drops blanks and dedupes, keeping first-seen order
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
