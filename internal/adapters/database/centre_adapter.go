package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/query"
	"github.com/zatekoja/tuitioncentres/backend/internal/domain/repositories"
	"github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/tuitioncentres/backend/pkg/errors"
)

// SQL dialects the adapter can target
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

// CentreAdapter implements CentreRepository on PostgreSQL or SQLite
type CentreAdapter struct {
	db          *sqlx.DB
	goqu        goqu.DialectWrapper
	dialectName string
	compiler    conditionCompiler
	metrics     *observability.Metrics
}

// Option configures a CentreAdapter
type Option func(*CentreAdapter)

// WithMetrics records query durations on m
func WithMetrics(m *observability.Metrics) Option {
	return func(a *CentreAdapter) { a.metrics = m }
}

// Ensure CentreAdapter implements CentreRepository
var _ repositories.CentreRepository = (*CentreAdapter)(nil)

// NewCentreAdapter creates a centre adapter for the given dialect
func NewCentreAdapter(db *sqlx.DB, dialect string, opts ...Option) (*CentreAdapter, error) {
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, fmt.Errorf("unsupported SQL dialect %q", dialect)
	}
	d := goqu.Dialect(dialect)
	a := &CentreAdapter{
		db:          db,
		goqu:        d,
		dialectName: dialect,
		compiler:    conditionCompiler{dialect: d},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

var centreColumns = []interface{}{
	goqu.I("tc.id"),
	goqu.I("tc.name"),
	goqu.I("tc.location"),
	goqu.I("tc.whatsapp_number"),
	goqu.I("tc.website"),
	goqu.I("tc.created_at"),
	goqu.I("tc.updated_at"),
}

func (a *CentreAdapter) from(table interface{}) *goqu.SelectDataset {
	return a.goqu.From(table).Prepared(true)
}

func (a *CentreAdapter) centres() *goqu.SelectDataset {
	return a.from(goqu.T(centresTable).As(centresAlias))
}

// snapshotOptions makes count and page read one consistent snapshot on
// PostgreSQL. SQLite transactions are already serializable.
func (a *CentreAdapter) snapshotOptions() *sql.TxOptions {
	if a.dialectName == DialectPostgres {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

func (a *CentreAdapter) observe(ctx context.Context, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
}

// SearchQueries renders the count and page statements for cond and window.
// Both share one WHERE clause.
func (a *CentreAdapter) SearchQueries(cond query.Condition, window query.Window) (countSQL string, countArgs []interface{}, pageSQL string, pageArgs []interface{}, err error) {
	where, err := a.compiler.compile(cond)
	if err != nil {
		return "", nil, "", nil, err
	}

	base := a.centres()
	if where != nil {
		base = base.Where(where)
	}

	countSQL, countArgs, err = base.Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}

	if window.Limit < 1 {
		window.Limit = query.DefaultLimit
	}
	if window.Offset < 0 {
		window.Offset = 0
	}
	pageSQL, pageArgs, err = base.Select(centreColumns...).
		Order(goqu.I("tc.name").Asc(), goqu.I("tc.id").Asc()).
		Limit(uint(window.Limit)).
		Offset(uint(window.Offset)).
		ToSQL()
	if err != nil {
		return "", nil, "", nil, err
	}
	return countSQL, countArgs, pageSQL, pageArgs, nil
}

// SearchCentres runs the count and the page query inside one read-only transaction
func (a *CentreAdapter) SearchCentres(ctx context.Context, cond query.Condition, window query.Window) (*repositories.CentreSearchPage, error) {
	defer a.observe(ctx, "search_centres", time.Now())

	countSQL, countArgs, pageSQL, pageArgs, err := a.SearchQueries(cond, window)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}

	tx, err := a.db.BeginTxx(ctx, a.snapshotOptions())
	if err != nil {
		return nil, apperrors.NewInternalError("failed to begin search transaction", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, apperrors.NewInternalError("failed to count centres", err)
	}

	centres := []*entities.Centre{}
	if window.Offset < total {
		if err := tx.SelectContext(ctx, &centres, pageSQL, pageArgs...); err != nil {
			return nil, apperrors.NewInternalError("failed to search centres", err)
		}
		if err := a.loadLinks(ctx, tx, centres); err != nil {
			return nil, apperrors.NewInternalError("failed to load centre levels and subjects", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewInternalError("failed to finish search transaction", err)
	}

	return &repositories.CentreSearchPage{Centres: centres, Total: total}, nil
}

// GetByID retrieves a centre with its flattened levels and subjects
func (a *CentreAdapter) GetByID(ctx context.Context, id string) (*entities.Centre, error) {
	defer a.observe(ctx, "get_centre", time.Now())

	sqlStr, args, err := a.centres().
		Select(centreColumns...).
		Where(goqu.I("tc.id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	centre := &entities.Centre{}
	err = a.db.GetContext(ctx, centre, sqlStr, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("Tuition centre not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get centre", err)
	}

	if err := a.loadLinks(ctx, a.db, []*entities.Centre{centre}); err != nil {
		return nil, apperrors.NewInternalError("failed to load centre levels and subjects", err)
	}
	return centre, nil
}

// CountOfferings returns the number of offering rows
func (a *CentreAdapter) CountOfferings(ctx context.Context) (int, error) {
	sqlStr, args, err := a.from(offeringsTable).Select(goqu.COUNT(goqu.Star())).ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.db.GetContext(ctx, &count, sqlStr, args...); err != nil {
		return 0, apperrors.NewInternalError("failed to count offerings", err)
	}
	return count, nil
}

// ListOfferedLevels returns levels referenced by at least one offering
func (a *CentreAdapter) ListOfferedLevels(ctx context.Context) ([]entities.Level, error) {
	levels := []entities.Level{}
	if err := a.listOffered(ctx, levelsTable, "level_id", &levels); err != nil {
		return nil, apperrors.NewInternalError("failed to list levels", err)
	}
	return levels, nil
}

// ListOfferedSubjects returns subjects referenced by at least one offering
func (a *CentreAdapter) ListOfferedSubjects(ctx context.Context) ([]entities.Subject, error) {
	subjects := []entities.Subject{}
	if err := a.listOffered(ctx, subjectsTable, "subject_id", &subjects); err != nil {
		return nil, apperrors.NewInternalError("failed to list subjects", err)
	}
	return subjects, nil
}

func (a *CentreAdapter) listOffered(ctx context.Context, table, offeringColumn string, dest interface{}) error {
	used := a.goqu.From(offeringsTable).Select(goqu.I(offeringColumn))
	sqlStr, args, err := a.from(goqu.T(table).As("r")).
		Select(goqu.I("r.id"), goqu.I("r.name")).
		Where(goqu.I("r.id").In(used)).
		Order(goqu.I("r.name").Asc(), goqu.I("r.id").Asc()).
		ToSQL()
	if err != nil {
		return err
	}
	return a.db.SelectContext(ctx, dest, sqlStr, args...)
}

type offeringRow struct {
	ID          string `db:"id"`
	CentreID    string `db:"tuition_centre_id"`
	LevelID     string `db:"level_id"`
	LevelName   string `db:"level_name"`
	SubjectID   string `db:"subject_id"`
	SubjectName string `db:"subject_name"`
}

// ListWithOfferings returns every centre with its offerings, by name
func (a *CentreAdapter) ListWithOfferings(ctx context.Context) ([]*entities.Centre, error) {
	defer a.observe(ctx, "list_centres", time.Now())

	sqlStr, args, err := a.centres().
		Select(centreColumns...).
		Order(goqu.I("tc.name").Asc(), goqu.I("tc.id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	centres := []*entities.Centre{}
	if err := a.db.SelectContext(ctx, &centres, sqlStr, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list centres", err)
	}

	offSQL, offArgs, err := a.from(goqu.T(offeringsTable).As("o")).
		Select(
			goqu.I("o.id"),
			goqu.I("o.tuition_centre_id"),
			goqu.I("l.id").As("level_id"),
			goqu.I("l.name").As("level_name"),
			goqu.I("s.id").As("subject_id"),
			goqu.I("s.name").As("subject_name"),
		).
		Join(goqu.T(levelsTable).As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("o.level_id")))).
		Join(goqu.T(subjectsTable).As("s"), goqu.On(goqu.I("s.id").Eq(goqu.I("o.subject_id")))).
		Order(goqu.I("l.name").Asc(), goqu.I("s.name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []offeringRow
	if err := a.db.SelectContext(ctx, &rows, offSQL, offArgs...); err != nil {
		return nil, apperrors.NewInternalError("failed to list offerings", err)
	}

	byCentre := make(map[string][]entities.Offering, len(centres))
	for _, r := range rows {
		byCentre[r.CentreID] = append(byCentre[r.CentreID], entities.Offering{
			ID:       r.ID,
			CentreID: r.CentreID,
			Level:    entities.Level{ID: r.LevelID, Name: r.LevelName},
			Subject:  entities.Subject{ID: r.SubjectID, Name: r.SubjectName},
		})
	}
	for _, c := range centres {
		c.Offerings = byCentre[c.ID]
		c.Levels, c.Subjects = entities.FlattenOfferings(c.Offerings)
	}
	return centres, nil
}

// Save replaces a centre and its offerings, and rebuilds its flattened links.
// Levels and subjects are created on first use.
func (a *CentreAdapter) Save(ctx context.Context, centre *entities.Centre) error {
	if centre.ID == "" {
		centre.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if centre.CreatedAt.IsZero() {
		centre.CreatedAt = now
	}
	centre.UpdatedAt = now

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	offerings := make([]entities.Offering, 0, len(centre.Offerings))
	seen := make(map[string]struct{}, len(centre.Offerings))
	for _, o := range centre.Offerings {
		levelID, err := a.ensureRef(ctx, tx, levelsTable, o.Level.Name)
		if err != nil {
			return apperrors.NewInternalError("failed to save level", err)
		}
		subjectID, err := a.ensureRef(ctx, tx, subjectsTable, o.Subject.Name)
		if err != nil {
			return apperrors.NewInternalError("failed to save subject", err)
		}
		key := levelID + "|" + subjectID
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		offerings = append(offerings, entities.Offering{
			ID:       entities.OfferingID(centre.ID, levelID, subjectID),
			CentreID: centre.ID,
			Level:    entities.Level{ID: levelID, Name: o.Level.Name},
			Subject:  entities.Subject{ID: subjectID, Name: o.Subject.Name},
		})
	}

	for _, table := range []string{centreLevels, centreSubjects, offeringsTable} {
		if err := a.exec(ctx, tx, a.goqu.Delete(table).Prepared(true).Where(goqu.Ex{"tuition_centre_id": centre.ID})); err != nil {
			return apperrors.NewInternalError("failed to clear centre offerings", err)
		}
	}
	if err := a.exec(ctx, tx, a.goqu.Delete(centresTable).Prepared(true).Where(goqu.Ex{"id": centre.ID})); err != nil {
		return apperrors.NewInternalError("failed to replace centre", err)
	}

	if err := a.exec(ctx, tx, a.goqu.Insert(centresTable).Prepared(true).Rows(goqu.Record{
		"id":              centre.ID,
		"name":            centre.Name,
		"location":        centre.Location,
		"whatsapp_number": centre.WhatsAppNumber,
		"website":         nullString(centre.Website),
		"created_at":      centre.CreatedAt,
		"updated_at":      centre.UpdatedAt,
	})); err != nil {
		return apperrors.NewInternalError("failed to insert centre", err)
	}

	levels, subjects := entities.FlattenOfferings(offerings)
	if len(offerings) > 0 {
		rows := make([]interface{}, 0, len(offerings))
		for _, o := range offerings {
			rows = append(rows, goqu.Record{
				"id":                o.ID,
				"tuition_centre_id": centre.ID,
				"level_id":          o.Level.ID,
				"subject_id":        o.Subject.ID,
			})
		}
		if err := a.exec(ctx, tx, a.goqu.Insert(offeringsTable).Prepared(true).Rows(rows...)); err != nil {
			return apperrors.NewInternalError("failed to insert offerings", err)
		}

		levelRows := make([]interface{}, 0, len(levels))
		for _, l := range levels {
			levelRows = append(levelRows, goqu.Record{"tuition_centre_id": centre.ID, "level_id": l.ID})
		}
		if err := a.exec(ctx, tx, a.goqu.Insert(centreLevels).Prepared(true).Rows(levelRows...)); err != nil {
			return apperrors.NewInternalError("failed to insert centre levels", err)
		}

		subjectRows := make([]interface{}, 0, len(subjects))
		for _, s := range subjects {
			subjectRows = append(subjectRows, goqu.Record{"tuition_centre_id": centre.ID, "subject_id": s.ID})
		}
		if err := a.exec(ctx, tx, a.goqu.Insert(centreSubjects).Prepared(true).Rows(subjectRows...)); err != nil {
			return apperrors.NewInternalError("failed to insert centre subjects", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit centre", err)
	}

	centre.Offerings = offerings
	centre.Levels, centre.Subjects = levels, subjects
	return nil
}

// ensureRef inserts a level or subject by name if missing and returns its id
func (a *CentreAdapter) ensureRef(ctx context.Context, tx *sqlx.Tx, table, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%s name is empty", table)
	}
	id := entities.LevelID(name)
	if table == subjectsTable {
		id = entities.SubjectID(name)
	}

	insert := a.goqu.Insert(table).Prepared(true).
		Rows(goqu.Record{"id": id, "name": name}).
		OnConflict(goqu.DoNothing())
	if err := a.exec(ctx, tx, insert); err != nil {
		return "", err
	}

	sqlStr, args, err := a.from(table).Select("id").Where(goqu.Ex{"name": name}).ToSQL()
	if err != nil {
		return "", err
	}
	var stored string
	if err := tx.GetContext(ctx, &stored, sqlStr, args...); err != nil {
		return "", err
	}
	return stored, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func (a *CentreAdapter) exec(ctx context.Context, ex sqlx.ExecerContext, b sqlBuilder) error {
	sqlStr, args, err := b.ToSQL()
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, sqlStr, args...)
	return err
}

// Reset removes all directory data
func (a *CentreAdapter) Reset(ctx context.Context) error {
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, table := range []string{centreLevels, centreSubjects, offeringsTable, centresTable, levelsTable, subjectsTable} {
		if err := a.exec(ctx, tx, a.goqu.Delete(table).Prepared(true)); err != nil {
			return apperrors.NewInternalError(fmt.Sprintf("failed to clear %s", table), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit reset", err)
	}
	return nil
}
