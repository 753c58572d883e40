package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
)

// centreLinks is the flattened display projection of one centre's offerings
type centreLinks struct {
	Levels   []entities.Level
	Subjects []entities.Subject
}

type linkRow struct {
	CentreID string `db:"tuition_centre_id"`
	ID       string `db:"id"`
	Name     string `db:"name"`
}

// newLinksLoader returns a loader that fetches flattened links for a set of
// centres in one batch. It is bound to q, so a loader created inside a
// transaction reads from the transaction's snapshot. capacity should be the
// number of keys about to be loaded so the batch dispatches without waiting.
func (a *CentreAdapter) newLinksLoader(q sqlx.QueryerContext, capacity int) *dataloader.Loader[string, centreLinks] {
	if capacity < 1 {
		capacity = 1
	}
	return dataloader.NewBatchedLoader(
		func(ctx context.Context, keys []string) []*dataloader.Result[centreLinks] {
			results := make([]*dataloader.Result[centreLinks], len(keys))

			links, err := a.fetchLinks(ctx, q, keys)
			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[centreLinks]{Error: err}
					continue
				}
				results[i] = &dataloader.Result[centreLinks]{Data: links[key]}
			}
			return results
		},
		dataloader.WithBatchCapacity[string, centreLinks](capacity),
		dataloader.WithCache[string, centreLinks](&dataloader.NoCache[string, centreLinks]{}),
	)
}

func (a *CentreAdapter) fetchLinks(ctx context.Context, q sqlx.QueryerContext, ids []string) (map[string]centreLinks, error) {
	out := make(map[string]centreLinks, len(ids))

	var levelRows []linkRow
	levelSQL, levelArgs, err := a.linkQuery(centreLevels, levelsTable, "level_id", ids)
	if err != nil {
		return nil, err
	}
	if err := sqlx.SelectContext(ctx, q, &levelRows, levelSQL, levelArgs...); err != nil {
		return nil, err
	}

	var subjectRows []linkRow
	subjectSQL, subjectArgs, err := a.linkQuery(centreSubjects, subjectsTable, "subject_id", ids)
	if err != nil {
		return nil, err
	}
	if err := sqlx.SelectContext(ctx, q, &subjectRows, subjectSQL, subjectArgs...); err != nil {
		return nil, err
	}

	for _, r := range levelRows {
		l := out[r.CentreID]
		l.Levels = append(l.Levels, entities.Level{ID: r.ID, Name: r.Name})
		out[r.CentreID] = l
	}
	for _, r := range subjectRows {
		l := out[r.CentreID]
		l.Subjects = append(l.Subjects, entities.Subject{ID: r.ID, Name: r.Name})
		out[r.CentreID] = l
	}
	return out, nil
}

// linkQuery selects (centre id, ref id, ref name) from a flattened link table
func (a *CentreAdapter) linkQuery(linkTable, refTable, refColumn string, ids []string) (string, []interface{}, error) {
	return a.from(goqu.T(linkTable).As("lk")).
		Select(
			goqu.I("lk.tuition_centre_id"),
			goqu.I("r.id"),
			goqu.I("r.name"),
		).
		Join(goqu.T(refTable).As("r"), goqu.On(goqu.I("r.id").Eq(goqu.I("lk."+refColumn)))).
		Where(a.centreIDIn(goqu.I("lk.tuition_centre_id"), ids)).
		Order(goqu.I("r.name").Asc(), goqu.I("r.id").Asc()).
		ToSQL()
}

// centreIDIn matches col against ids. PostgreSQL binds the ids as a single
// array parameter so the statement text does not grow with the page size.
func (a *CentreAdapter) centreIDIn(col exp.IdentifierExpression, ids []string) exp.Expression {
	if a.dialectName == DialectPostgres {
		return goqu.L("? = ANY(?)", col, pq.Array(ids))
	}
	return col.In(ids)
}

// loadLinks fills the flattened levels and subjects of centres through one
// batched loader call
func (a *CentreAdapter) loadLinks(ctx context.Context, q sqlx.QueryerContext, centres []*entities.Centre) error {
	if len(centres) == 0 {
		return nil
	}

	ids := make([]string, len(centres))
	for i, c := range centres {
		ids[i] = c.ID
	}

	loader := a.newLinksLoader(q, len(ids))
	links, errs := loader.LoadMany(ctx, ids)()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	for i, c := range centres {
		c.Levels = nonNilLevels(links[i].Levels)
		c.Subjects = nonNilSubjects(links[i].Subjects)
	}
	return nil
}

func nonNilLevels(l []entities.Level) []entities.Level {
	if l == nil {
		return []entities.Level{}
	}
	return l
}

func nonNilSubjects(s []entities.Subject) []entities.Subject {
	if s == nil {
		return []entities.Subject{}
	}
	return s
}
