package database

import (
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
)

const (
	centresTable   = "tuition_centres"
	centresAlias   = "tc"
	offeringsTable = "offerings"
	levelsTable    = "levels"
	subjectsTable  = "subjects"
	centreLevels   = "tuition_centre_levels"
	centreSubjects = "tuition_centre_subjects"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term anywhere, with LIKE
// metacharacters in term taken literally
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// conditionCompiler turns a condition tree into a goqu WHERE expression over
// the centres table aliased as "tc". A nil expression means "no constraint".
type conditionCompiler struct {
	dialect goqu.DialectWrapper
}

func (c conditionCompiler) compile(cond query.Condition) (exp.Expression, error) {
	switch n := cond.(type) {
	case nil:
		return nil, nil
	case query.And:
		var parts []exp.Expression
		for _, clause := range n.Clauses {
			e, err := c.compile(clause)
			if err != nil {
				return nil, err
			}
			if e != nil {
				parts = append(parts, e)
			}
		}
		switch len(parts) {
		case 0:
			return nil, nil
		case 1:
			return parts[0], nil
		}
		return goqu.And(parts...), nil
	case query.Or:
		if len(n.Clauses) == 0 {
			return goqu.L("1 = 0"), nil
		}
		parts := make([]exp.Expression, 0, len(n.Clauses))
		for _, clause := range n.Clauses {
			e, err := c.compile(clause)
			if err != nil {
				return nil, err
			}
			if e == nil {
				return nil, nil
			}
			parts = append(parts, e)
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return goqu.Or(parts...), nil
	case query.TextMatch:
		column, err := textColumn(n.Field)
		if err != nil {
			return nil, err
		}
		return goqu.L(`LOWER(?) LIKE LOWER(?) ESCAPE '\'`, column, containsPattern(n.Term)), nil
	case query.OfferingMatch:
		return goqu.I(centresAlias+".id").In(c.offeringSubquery(n)), nil
	default:
		return nil, fmt.Errorf("unsupported condition %T", cond)
	}
}

// offeringSubquery selects the ids of centres owning at least one offering row
// that satisfies both axes of m. Level and subject are joined onto the same
// offering row, never onto separate rows.
func (c conditionCompiler) offeringSubquery(m query.OfferingMatch) *goqu.SelectDataset {
	ds := c.dialect.From(goqu.T(offeringsTable).As("o")).
		Select(goqu.I("o.tuition_centre_id"))

	if len(m.Levels) > 0 {
		ds = ds.Join(
			goqu.T(levelsTable).As("l"),
			goqu.On(goqu.I("l.id").Eq(goqu.I("o.level_id"))),
		).Where(goqu.I("l.name").In(m.Levels))
	}
	if len(m.Subjects) > 0 {
		ds = ds.Join(
			goqu.T(subjectsTable).As("s"),
			goqu.On(goqu.I("s.id").Eq(goqu.I("o.subject_id"))),
		).Where(goqu.I("s.name").In(m.Subjects))
	}
	return ds
}

func textColumn(field query.TextField) (exp.IdentifierExpression, error) {
	switch field {
	case query.FieldName, query.FieldLocation:
		return goqu.I(centresAlias + "." + string(field)), nil
	default:
		return nil, fmt.Errorf("unsupported text field %q", field)
	}
}
