package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"folio/logging"
	"folio/models"
)

// StatsQueries is the number of reads ProjectStats issues.
const StatsQueries = 4

const projectColumns = `id, title, description, short_description, technologies,
	project_type, status, is_featured, priority,
	github_url, live_url, image_url, created_at, updated_at`

// QueryProjects retrieves projects matching every supplied filter, ordered
// and windowed by the filter. The filter must already be validated.
// Uses COUNT(*) OVER() to get the total in the same query.
func (db *DB) QueryProjects(ctx context.Context, f models.QueryFilter) ([]models.Project, int64, error) {
	start := time.Now()
	defer func() {
		logging.Debug().
			Dur("duration", time.Since(start)).
			Interface("type", f.Type).
			Interface("status", f.Status).
			Interface("featured", f.Featured).
			Int("limit", f.Limit).
			Int("offset", f.Offset).
			Msg("QueryProjects")
	}()

	qb, err := projectFilter(f)
	if err != nil {
		return nil, 0, err
	}

	orderBy, err := OrderClause(f.Sort, f.Order)
	if err != nil {
		return nil, 0, err
	}

	// SAFETY: All user input is parameterized via $N placeholders.
	// whereClause and orderBy only contain whitelisted columns.
	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(*) OVER() AS total_count
		FROM projects
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, projectColumns, qb.WhereClause(), orderBy, qb.NextArgNum(), qb.NextArgNum()+1)

	args := append(qb.Args(), f.Limit, f.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, unavailable("query projects", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	var total int64
	for rows.Next() {
		project, err := scanProject(rows, &total)
		if err != nil {
			return nil, 0, unavailable("scan project", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, unavailable("iterate projects", err)
	}

	// An offset past the end returns no rows, so the window count is lost.
	if len(projects) == 0 && f.Offset > 0 {
		total, err = db.countProjects(ctx, qb)
		if err != nil {
			return nil, 0, err
		}
	}

	return projects, total, nil
}

func projectFilter(f models.QueryFilter) (*QueryBuilder, error) {
	qb := NewQueryBuilder()
	if f.Type != nil {
		qb.AddCondition(columnProjectType, *f.Type)
	}
	if f.Status != nil {
		qb.AddCondition(columnStatus, *f.Status)
	}
	if f.Featured != nil {
		qb.AddCondition(columnIsFeatured, *f.Featured)
	}
	if f.Search != nil {
		tsQuery, err := NewSearchQueryParser().Parse(*f.Search)
		if err != nil {
			return nil, err
		}
		qb.AddFullTextSearch(searchDocument, tsQuery)
	}
	return qb, nil
}

func (db *DB) countProjects(ctx context.Context, qb *QueryBuilder) (int64, error) {
	var total int64
	query := "SELECT COUNT(*) FROM projects " + qb.WhereClause()
	if err := db.Pool.QueryRow(ctx, query, qb.Args()...).Scan(&total); err != nil {
		return 0, unavailable("count projects", err)
	}
	return total, nil
}

// ProjectStats aggregates the projects table. The four reads run as one
// batch inside a read-only repeatable-read transaction so they observe the
// same snapshot; any failed read fails the whole aggregate.
func (db *DB) ProjectStats(ctx context.Context) (models.ProjectStats, error) {
	start := time.Now()
	defer func() {
		logging.Debug().Dur("duration", time.Since(start)).Msg("ProjectStats")
	}()

	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return models.ProjectStats{}, unavailable("begin stats", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	queries := []string{
		"SELECT project_type FROM projects",
		"SELECT status FROM projects",
		"SELECT COUNT(*) FROM projects WHERE is_featured = true",
		"SELECT COUNT(*) FROM projects",
	}
	batch := &pgx.Batch{}
	for _, q := range queries {
		batch.Queue(q)
	}

	results := tx.SendBatch(ctx, batch)

	batchErr := func(i int, err error) error {
		_ = results.Close()
		return unavailable("project stats", &BatchReadError{
			FailedIndex:  i,
			TotalQueries: len(queries),
			Query:        queries[i],
			Err:          err,
		})
	}

	var types, statuses []*string
	for i, dest := range []*[]*string{&types, &statuses} {
		rows, err := results.Query()
		if err != nil {
			return models.ProjectStats{}, batchErr(i, err)
		}
		*dest, err = pgx.CollectRows(rows, pgx.RowTo[*string])
		if err != nil {
			return models.ProjectStats{}, batchErr(i, err)
		}
	}

	var featured, total int64
	if err := results.QueryRow().Scan(&featured); err != nil {
		return models.ProjectStats{}, batchErr(2, err)
	}
	if err := results.QueryRow().Scan(&total); err != nil {
		return models.ProjectStats{}, batchErr(3, err)
	}

	if err := results.Close(); err != nil {
		return models.ProjectStats{}, unavailable("close stats batch", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return models.ProjectStats{}, unavailable("commit stats", err)
	}

	return models.TallyStats(types, statuses, featured, total), nil
}

// GetProject returns one project by id, or ErrNotFound.
func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1`, projectColumns)

	p, err := scanProject(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
		}
		return nil, unavailable("get project", err)
	}
	return p, nil
}

// InsertProject stores p and fills its generated id and timestamps.
// Used by seeding and tests; the public API is read-only.
func (db *DB) InsertProject(ctx context.Context, p *models.Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}

	query := `
		INSERT INTO projects (title, description, short_description, technologies,
			project_type, status, is_featured, priority, github_url, live_url, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	err := db.Pool.QueryRow(ctx, query,
		p.Title, p.Description, p.ShortDescription, p.Technologies,
		p.ProjectType, p.Status, p.IsFeatured, p.Priority,
		p.GithubURL, p.LiveURL, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return unavailable("insert project", err)
	}
	return nil
}

// IsBackendError reports whether err came from the persistence backend.
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackendUnavailable)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanProject scans projectColumns followed by any extra columns.
func scanProject(row rowScanner, extra ...interface{}) (*models.Project, error) {
	var project models.Project
	dest := []interface{}{
		&project.ID,
		&project.Title,
		&project.Description,
		&project.ShortDescription,
		&project.Technologies,
		&project.ProjectType,
		&project.Status,
		&project.IsFeatured,
		&project.Priority,
		&project.GithubURL,
		&project.LiveURL,
		&project.ImageURL,
		&project.CreatedAt,
		&project.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if project.Technologies == nil {
		project.Technologies = []string{}
	}
	return &project, nil
}
