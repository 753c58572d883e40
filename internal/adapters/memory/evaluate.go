package memory

import (
	"fmt"
	"strings"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/pkg/utils"
)

// matches evaluates cond against one centre
func matches(cond query.Condition, c *entities.Centre) (bool, error) {
	switch n := cond.(type) {
	case nil:
		return true, nil
	case query.And:
		for _, clause := range n.Clauses {
			ok, err := matches(clause, c)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case query.Or:
		for _, clause := range n.Clauses {
			ok, err := matches(clause, c)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case query.TextMatch:
		value, err := textValue(c, n.Field)
		if err != nil {
			return false, err
		}
		return strings.Contains(utils.FoldCase(value), utils.FoldCase(n.Term)), nil
	case query.OfferingMatch:
		return hasOffering(c, n), nil
	default:
		return false, fmt.Errorf("unsupported condition %T", cond)
	}
}

func textValue(c *entities.Centre, field query.TextField) (string, error) {
	switch field {
	case query.FieldName:
		return c.Name, nil
	case query.FieldLocation:
		return c.Location, nil
	default:
		return "", fmt.Errorf("unsupported text field %q", field)
	}
}

// hasOffering looks for one offering row satisfying both axes
func hasOffering(c *entities.Centre, m query.OfferingMatch) bool {
	levels := toSet(m.Levels)
	subjects := toSet(m.Subjects)
	for _, o := range c.Offerings {
		if levels != nil {
			if _, ok := levels[o.Level.Name]; !ok {
				continue
			}
		}
		if subjects != nil {
			if _, ok := subjects[o.Subject.Name]; !ok {
				continue
			}
		}
		return true
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
