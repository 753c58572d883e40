package search

import (
	"fmt"
	"strings"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
)

// searchPlan is a condition tree lowered to Typesense search parameters
type searchPlan struct {
	Q         string
	QueryBy   []string
	Filters   []string
	MatchNone bool
}

// FilterBy joins the filter clauses with AND
func (p searchPlan) FilterBy() string {
	return strings.Join(p.Filters, " && ")
}

// planSearch lowers cond. Typesense holds one free-text query per request, so
// every TextMatch in the tree must carry the same term and may only appear as a
// top-level clause or inside a top-level Or of text matches.
func planSearch(cond query.Condition) (searchPlan, error) {
	plan := searchPlan{Q: "*"}
	if err := plan.add(cond, true); err != nil {
		return searchPlan{}, err
	}
	return plan, nil
}

func (p *searchPlan) add(cond query.Condition, topLevel bool) error {
	switch n := cond.(type) {
	case nil:
		return nil
	case query.And:
		if !topLevel {
			return fmt.Errorf("nested and is not supported by the search index")
		}
		for _, clause := range n.Clauses {
			if err := p.add(clause, false); err != nil {
				return err
			}
		}
		return nil
	case query.Or:
		if len(n.Clauses) == 0 {
			p.MatchNone = true
			return nil
		}
		for _, clause := range n.Clauses {
			text, ok := clause.(query.TextMatch)
			if !ok {
				return fmt.Errorf("or over %T is not supported by the search index", clause)
			}
			if err := p.addText(text); err != nil {
				return err
			}
		}
		return nil
	case query.TextMatch:
		return p.addText(n)
	case query.OfferingMatch:
		filter, ok := offeringFilter(n)
		if !ok {
			p.MatchNone = true
			return nil
		}
		p.Filters = append(p.Filters, filter)
		return nil
	default:
		return fmt.Errorf("unsupported condition %T", cond)
	}
}

func (p *searchPlan) addText(m query.TextMatch) error {
	switch m.Field {
	case query.FieldName, query.FieldLocation:
	default:
		return fmt.Errorf("unsupported text field %q", m.Field)
	}
	if p.Q != "*" && p.Q != m.Term {
		return fmt.Errorf("search index supports a single text term, got %q and %q", p.Q, m.Term)
	}
	p.Q = m.Term
	for _, f := range p.QueryBy {
		if f == string(m.Field) {
			return nil
		}
	}
	p.QueryBy = append(p.QueryBy, string(m.Field))
	return nil
}

// offeringFilter matches documents holding one offering that satisfies both
// axes. With both axes set it filters the pair tokens of every combination.
// Names that are not valid labels are never indexed and are dropped; ok is
// false when an axis is left with nothing that can match.
func offeringFilter(m query.OfferingMatch) (filter string, ok bool) {
	levels, subjects := indexableLabels(m.Levels), indexableLabels(m.Subjects)
	if (len(m.Levels) > 0 && len(levels) == 0) || (len(m.Subjects) > 0 && len(subjects) == 0) {
		return "", false
	}

	switch {
	case len(levels) > 0 && len(subjects) > 0:
		pairs := make([]string, 0, len(levels)*len(subjects))
		for _, level := range levels {
			for _, subject := range subjects {
				pairs = append(pairs, pairToken(level, subject))
			}
		}
		return "offerings:=" + valueList(pairs), true
	case len(levels) > 0:
		return "levels:=" + valueList(levels), true
	case len(subjects) > 0:
		return "subjects:=" + valueList(subjects), true
	default:
		return "offering_count:>0", true
	}
}

func indexableLabels(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if entities.ValidLabel(name) {
			out = append(out, name)
		}
	}
	return out
}

// valueList renders values as a backtick-quoted filter list. Values are valid
// labels, so they hold no backtick.
func valueList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, "`"+v+"`")
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
