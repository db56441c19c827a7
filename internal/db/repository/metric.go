package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"covtrack/internal/domain"
)

var _ domain.MetricRepository = (*MetricRepo)(nil)

// MetricRepo stores Glean and Legacy metric definitions in SQLite.
type MetricRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewMetricRepo creates a new MetricRepo.
func NewMetricRepo(writeDB, readDB *sql.DB) *MetricRepo {
	return &MetricRepo{writeDB: writeDB, readDB: readDB}
}

// metricTable maps a variant to its table. The variant is a closed enum, so
// the returned name is always one of the two literals below.
func metricTable(v domain.Variant) (string, error) {
	switch v {
	case domain.VariantGlean:
		return "glean_metrics", nil
	case domain.VariantLegacy:
		return "legacy_metrics", nil
	default:
		return "", domain.ErrValidation("unknown metric variant %q", v)
	}
}

// Create inserts a new metric.
func (r *MetricRepo) Create(ctx context.Context, m *domain.Metric) (*domain.Metric, error) {
	if m == nil {
		return nil, domain.ErrValidation("metric is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, domain.ErrValidation("metric name is required")
	}
	table, err := metricTable(m.Variant)
	if err != nil {
		return nil, err
	}

	category := m.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	_, err = r.writeDB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (name, category, expiration, description, search_metric, cross_reference)
		VALUES (?, ?, ?, ?, ?, ?)
	`, table), m.Name, category, nullStr(m.Expiration), nullStr(m.Description),
		boolToInt(m.SearchMetric), nullStr(m.CrossReference))
	if err != nil {
		return nil, mapDBError(err)
	}

	return r.Get(ctx, m.Name, m.Variant)
}

// Update applies a patch to a metric. Nil patch fields are left unchanged.
func (r *MetricRepo) Update(ctx context.Context, name string, v domain.Variant, patch domain.MetricPatch) (*domain.Metric, error) {
	table, err := metricTable(v)
	if err != nil {
		return nil, err
	}

	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Expiration != nil {
		sets = append(sets, "expiration = ?")
		args = append(args, *patch.Expiration)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.SearchMetric != nil {
		sets = append(sets, "search_metric = ?")
		args = append(args, boolToInt(*patch.SearchMetric))
	}
	if patch.CrossReference != nil {
		sets = append(sets, "cross_reference = ?")
		args = append(args, *patch.CrossReference)
	}
	if len(sets) == 0 {
		return r.Get(ctx, name, v)
	}
	args = append(args, name)

	res, err := r.writeDB.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET %s WHERE name = ? AND is_deleted = 0
	`, table, strings.Join(sets, ", ")), args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound("metric %q not found", name)
	}

	return r.Get(ctx, name, v)
}

// Get returns one metric by name and variant, deleted or not.
func (r *MetricRepo) Get(ctx context.Context, name string, v domain.Variant) (*domain.Metric, error) {
	table, err := metricTable(v)
	if err != nil {
		return nil, err
	}

	row := r.readDB.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT name, category, expiration, description, search_metric, cross_reference,
		       is_deleted, created_at, updated_at
		FROM %s WHERE name = ?
	`, table), name)

	m, err := scanMetric(row, v)
	if err != nil {
		return nil, mapDBError(err)
	}
	return m, nil
}

// List returns all metrics of one variant ordered by name.
func (r *MetricRepo) List(ctx context.Context, v domain.Variant, includeDeleted bool) ([]domain.Metric, error) {
	table, err := metricTable(v)
	if err != nil {
		return nil, err
	}

	where := "WHERE is_deleted = 0"
	if includeDeleted {
		where = ""
	}
	rows, err := r.readDB.QueryContext(ctx, fmt.Sprintf(`
		SELECT name, category, expiration, description, search_metric, cross_reference,
		       is_deleted, created_at, updated_at
		FROM %s %s ORDER BY name
	`, table, where))
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.Metric
	for rows.Next() {
		m, err := scanMetric(rows, v)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Categories returns the distinct live categories across both variants.
func (r *MetricRepo) Categories(ctx context.Context) ([]domain.CategoryOption, error) {
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT DISTINCT category, 'Glean' FROM glean_metrics WHERE is_deleted = 0
		UNION
		SELECT DISTINCT category, 'Legacy' FROM legacy_metrics WHERE is_deleted = 0
		ORDER BY 1, 2
	`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.CategoryOption
	for rows.Next() {
		var c domain.CategoryOption
		if err := rows.Scan(&c.Name, &c.Source); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FilterExisting returns the subset of names that exist live under v.
func (r *MetricRepo) FilterExisting(ctx context.Context, v domain.Variant, names []string) (map[string]bool, error) {
	table, err := metricTable(v)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return map[string]bool{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := r.readDB.QueryContext(ctx, fmt.Sprintf(`
		SELECT name FROM %s WHERE is_deleted = 0 AND name IN (%s)
	`, table, placeholders), args...)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(names))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		found[name] = true
	}
	return found, rows.Err()
}

// SetDeleted flips the soft-delete flag on a metric.
func (r *MetricRepo) SetDeleted(ctx context.Context, name string, v domain.Variant, deleted bool) error {
	table, err := metricTable(v)
	if err != nil {
		return err
	}

	res, err := r.writeDB.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET is_deleted = ? WHERE name = ?
	`, table), boolToInt(deleted), name)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("metric %q not found", name)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetric(row rowScanner, v domain.Variant) (*domain.Metric, error) {
	var (
		m           domain.Metric
		expiration  sql.NullString
		description sql.NullString
		crossRef    sql.NullString
		searchInt   int64
		deletedInt  int64
	)
	err := row.Scan(&m.Name, &m.Category, &expiration, &description, &searchInt,
		&crossRef, &deletedInt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Variant = v
	m.Expiration = strPtr(expiration)
	m.Description = strPtr(description)
	m.CrossReference = strPtr(crossRef)
	m.SearchMetric = searchInt != 0
	m.IsDeleted = deletedInt != 0
	return &m, nil
}
