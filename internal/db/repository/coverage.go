package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"covtrack/internal/domain"
)

var _ domain.CoverageRepository = (*CoverageRepo)(nil)

// CoverageRepo stores coverage roots and metric links in SQLite.
//
// Read queries exclude soft-deleted rows and any TCID present live in the
// exceptions table.
type CoverageRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewCoverageRepo creates a new CoverageRepo.
func NewCoverageRepo(writeDB, readDB *sql.DB) *CoverageRepo {
	return &CoverageRepo{writeDB: writeDB, readDB: readDB}
}

const excludeExceptions = `c.tc_id NOT IN (SELECT tc_id FROM exceptions WHERE is_deleted = 0)`

// GetRootByTCID returns the live root for a normalized TCID.
func (r *CoverageRepo) GetRootByTCID(ctx context.Context, tcid string) (*domain.CoverageRoot, error) {
	row := r.readDB.QueryRowContext(ctx, `
		SELECT id, tc_id, title, is_deleted, created_at, updated_at
		FROM coverage WHERE tc_id = ? AND is_deleted = 0
	`, tcid)

	var (
		root    domain.CoverageRoot
		title   sql.NullString
		deleted int64
	)
	err := row.Scan(&root.ID, &root.TCID, &title, &deleted, &root.CreatedAt, &root.UpdatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	root.Title = strPtr(title)
	root.IsDeleted = deleted != 0
	return &root, nil
}

// AddLinks finds or creates the root for tcid, then inserts the cartesian
// product of refs x regions x engines. The whole batch is one transaction;
// tuples that already exist are counted as duplicates and left untouched.
//
// An empty regions or engines slice means "dimension absent" and inserts
// NULL for that column.
func (r *CoverageRepo) AddLinks(ctx context.Context, tcid string, title *string, refs []domain.MetricRef, regions, engines []string) (*domain.LinkInsertResult, error) {
	if tcid == "" {
		return nil, domain.ErrValidation("tc_id is required")
	}
	if len(refs) == 0 {
		return nil, domain.ErrValidation("at least one metric is required")
	}

	tx, err := r.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rootID, err := ensureRoot(ctx, tx, tcid, title)
	if err != nil {
		return nil, err
	}

	regionVals := dimensionValues(regions)
	engineVals := dimensionValues(engines)

	var result domain.LinkInsertResult
	for _, ref := range refs {
		for _, region := range regionVals {
			for _, engine := range engineVals {
				res, err := tx.ExecContext(ctx, `
					INSERT OR IGNORE INTO coverage_links
						(coverage_id, metric_name, metric_variant, region, engine)
					VALUES (?, ?, ?, ?, ?)
				`, rootID, ref.Name, string(ref.Variant), region, engine)
				if err != nil {
					return nil, mapDBError(err)
				}
				n, err := res.RowsAffected()
				if err != nil {
					return nil, err
				}
				if n == 0 {
					result.Duplicates++
				} else {
					result.Inserted++
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &result, nil
}

// ensureRoot returns the id of the live root for tcid, creating or
// undeleting it as needed. Title is only filled in when the root has none.
func ensureRoot(ctx context.Context, tx *sql.Tx, tcid string, title *string) (int64, error) {
	var (
		id        int64
		deleted   int64
		haveTitle sql.NullString
	)
	err := tx.QueryRowContext(ctx, `
		SELECT id, is_deleted, title FROM coverage WHERE tc_id = ?
	`, tcid).Scan(&id, &deleted, &haveTitle)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx, `
			INSERT INTO coverage (tc_id, title) VALUES (?, ?)
		`, tcid, nullStr(title))
		if err != nil {
			return 0, mapDBError(err)
		}
		return res.LastInsertId()
	case err != nil:
		return 0, mapDBError(err)
	}

	if deleted != 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE coverage SET is_deleted = 0 WHERE id = ?`, id); err != nil {
			return 0, mapDBError(err)
		}
	}
	if !haveTitle.Valid && title != nil {
		if _, err := tx.ExecContext(ctx, `UPDATE coverage SET title = ? WHERE id = ?`, *title, id); err != nil {
			return 0, mapDBError(err)
		}
	}
	return id, nil
}

// dimensionValues converts a region or engine list to insertable values.
// Empty list means the dimension is absent and stores NULL. The sentinel
// strings used in CSV round-trips also map to NULL.
func dimensionValues(vals []string) []any {
	if len(vals) == 0 {
		return []any{nil}
	}
	out := make([]any, 0, len(vals))
	for _, v := range vals {
		if v == "" || v == domain.NoRegion || v == domain.NoEngine {
			out = append(out, nil)
			continue
		}
		out = append(out, v)
	}
	return out
}

// MetricSummaries returns per-metric coverage aggregates for one variant,
// each with its full detail listing, ordered by metric name.
func (r *CoverageRepo) MetricSummaries(ctx context.Context, v domain.Variant) ([]domain.MetricCoverage, error) {
	table, err := metricTable(v)
	if err != nil {
		return nil, err
	}

	rows, err := r.readDB.QueryContext(ctx, fmt.Sprintf(`
		SELECT m.name, m.category, l.id, c.tc_id, c.title, l.region, l.engine
		FROM %s m
		JOIN coverage_links l ON l.metric_name = m.name AND l.metric_variant = ? AND l.is_deleted = 0
		JOIN coverage c ON c.id = l.coverage_id AND c.is_deleted = 0
		WHERE m.is_deleted = 0 AND %s
		ORDER BY m.name, l.engine IS NULL, l.engine, l.region IS NULL, l.region, c.tc_id
	`, table, excludeExceptions), string(v))
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.MetricCoverage
	var cur *domain.MetricCoverage
	for rows.Next() {
		var (
			name, category        string
			linkID                int64
			tcid                  string
			title, region, engine sql.NullString
		)
		if err := rows.Scan(&name, &category, &linkID, &tcid, &title, &region, &engine); err != nil {
			return nil, err
		}
		if cur == nil || cur.MetricName != name {
			out = append(out, domain.MetricCoverage{MetricName: name, Variant: v, Category: category})
			cur = &out[len(out)-1]
		}
		cur.Details = append(cur.Details, domain.LinkDetail{
			LinkID: linkID,
			TCID:   tcid,
			Title:  strPtr(title),
			Region: strPtr(region),
			Engine: strPtr(engine),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		fillCounts(&out[i])
	}
	return out, nil
}

// fillCounts derives the distinct region/engine/TCID counts from details.
func fillCounts(mc *domain.MetricCoverage) {
	regions := map[string]struct{}{}
	engines := map[string]struct{}{}
	tcids := map[string]struct{}{}
	for _, d := range mc.Details {
		if d.Region != nil {
			regions[*d.Region] = struct{}{}
		}
		if d.Engine != nil {
			engines[*d.Engine] = struct{}{}
		}
		tcids[d.TCID] = struct{}{}
	}
	mc.RegionCount = len(regions)
	mc.EngineCount = len(engines)
	mc.TCIDCount = len(tcids)
}

// DetailsForMetric returns the live detail rows for one metric, absent
// dimensions sorted last.
func (r *CoverageRepo) DetailsForMetric(ctx context.Context, name string, v domain.Variant) ([]domain.LinkDetail, error) {
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT l.id, c.tc_id, c.title, l.region, l.engine
		FROM coverage_links l
		JOIN coverage c ON c.id = l.coverage_id AND c.is_deleted = 0
		WHERE l.metric_name = ? AND l.metric_variant = ? AND l.is_deleted = 0
		  AND `+excludeExceptions+`
		ORDER BY l.engine IS NULL, l.engine, l.region IS NULL, l.region, c.tc_id
	`, name, string(v))
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.LinkDetail
	for rows.Next() {
		var (
			d                     domain.LinkDetail
			title, region, engine sql.NullString
		)
		if err := rows.Scan(&d.LinkID, &d.TCID, &title, &region, &engine); err != nil {
			return nil, err
		}
		d.Title = strPtr(title)
		d.Region = strPtr(region)
		d.Engine = strPtr(engine)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ReportRows returns every live metric of one variant with its distinct
// covered TCID count, zero included.
func (r *CoverageRepo) ReportRows(ctx context.Context, v domain.Variant) ([]domain.ReportRow, error) {
	table, err := metricTable(v)
	if err != nil {
		return nil, err
	}

	rows, err := r.readDB.QueryContext(ctx, fmt.Sprintf(`
		SELECT m.name, COUNT(DISTINCT c.tc_id)
		FROM %s m
		LEFT JOIN coverage_links l ON l.metric_name = m.name AND l.metric_variant = ? AND l.is_deleted = 0
		LEFT JOIN coverage c ON c.id = l.coverage_id AND c.is_deleted = 0
			AND %s
		WHERE m.is_deleted = 0
		GROUP BY m.name
		ORDER BY m.name
	`, table, excludeExceptions), string(v))
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.ReportRow
	for rows.Next() {
		row := domain.ReportRow{Variant: v}
		if err := rows.Scan(&row.MetricName, &row.TCIDCount); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Stats returns the dashboard headline numbers.
func (r *CoverageRepo) Stats(ctx context.Context) (*domain.CoverageStats, error) {
	var stats domain.CoverageStats
	err := r.readDB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM glean_metrics WHERE is_deleted = 0),
			(SELECT COUNT(*) FROM legacy_metrics WHERE is_deleted = 0),
			(SELECT COUNT(DISTINCT c.tc_id) FROM coverage_links l
				JOIN coverage c ON c.id = l.coverage_id AND c.is_deleted = 0
				WHERE l.metric_variant = 'glean' AND l.is_deleted = 0 AND `+excludeExceptions+`),
			(SELECT COUNT(DISTINCT c.tc_id) FROM coverage_links l
				JOIN coverage c ON c.id = l.coverage_id AND c.is_deleted = 0
				WHERE l.metric_variant = 'legacy' AND l.is_deleted = 0 AND `+excludeExceptions+`)
	`).Scan(&stats.TotalGleanMetrics, &stats.TotalLegacyMetrics,
		&stats.GleanCoveredTCs, &stats.LegacyCoveredTCs)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &stats, nil
}

// Suggest returns live TCIDs matching the query by id prefix or title
// substring, for autocomplete.
func (r *CoverageRepo) Suggest(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	if limit <= 0 {
		limit = 10
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	rows, err := r.readDB.QueryContext(ctx, `
		SELECT c.tc_id, c.title
		FROM coverage c
		WHERE c.is_deleted = 0 AND `+excludeExceptions+`
		  AND (c.tc_id LIKE ? OR c.title LIKE ?)
		ORDER BY c.tc_id
		LIMIT ?
	`, q+"%", "%"+q+"%", limit)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.Suggestion
	for rows.Next() {
		var (
			s     domain.Suggestion
			title sql.NullString
		)
		if err := rows.Scan(&s.TCID, &title); err != nil {
			return nil, err
		}
		s.Title = strPtr(title)
		out = append(out, s)
	}
	return out, rows.Err()
}

// SetRootDeleted flips the soft-delete flag on a root and all its links.
func (r *CoverageRepo) SetRootDeleted(ctx context.Context, tcid string, deleted bool) error {
	tx, err := r.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE coverage SET is_deleted = ? WHERE tc_id = ?`,
		boolToInt(deleted), tcid)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("coverage for TCID %q not found", tcid)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE coverage_links SET is_deleted = ?
		WHERE coverage_id = (SELECT id FROM coverage WHERE tc_id = ?)
	`, boolToInt(deleted), tcid)
	if err != nil {
		return mapDBError(err)
	}

	return tx.Commit()
}

// SetLinkDeleted flips the soft-delete flag on a single link.
func (r *CoverageRepo) SetLinkDeleted(ctx context.Context, linkID int64, deleted bool) error {
	res, err := r.writeDB.ExecContext(ctx, `UPDATE coverage_links SET is_deleted = ? WHERE id = ?`,
		boolToInt(deleted), linkID)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("coverage link %d not found", linkID)
	}
	return nil
}
