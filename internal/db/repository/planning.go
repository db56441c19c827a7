package repository

import (
	"context"
	"database/sql"
	"fmt"

	"covtrack/internal/domain"
)

var _ domain.PlanningRepository = (*PlanningRepo)(nil)

// PlanningRepo stores per-metric priorities, notes, and planned coverage
// combinations in SQLite.
type PlanningRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewPlanningRepo creates a new PlanningRepo.
func NewPlanningRepo(writeDB, readDB *sql.DB) *PlanningRepo {
	return &PlanningRepo{writeDB: writeDB, readDB: readDB}
}

// holderConflict targets the partial unique index over holder rows, so the
// upsert never collides with planned combinations.
const holderConflict = `ON CONFLICT (metric_name, metric_variant)
	WHERE tc_id IS NULL AND region IS NULL AND engine IS NULL`

// Rows assembles the planning grid for one variant: every live metric with
// its holder priority/notes, realized coverage, and outstanding plans.
func (r *PlanningRepo) Rows(ctx context.Context, v domain.Variant) ([]domain.PlanningRow, error) {
	table, err := metricTable(v)
	if err != nil {
		return nil, err
	}

	rows, err := r.readDB.QueryContext(ctx, fmt.Sprintf(`
		SELECT m.name, m.category, h.priority, h.notes
		FROM %s m
		LEFT JOIN planning h ON h.metric_name = m.name AND h.metric_variant = ?
			AND h.tc_id IS NULL AND h.region IS NULL AND h.engine IS NULL
			AND h.is_deleted = 0
		WHERE m.is_deleted = 0
		ORDER BY m.name
	`, table), string(v))
	if err != nil {
		return nil, mapDBError(err)
	}

	var out []domain.PlanningRow
	index := map[string]int{}
	for rows.Next() {
		var (
			row             domain.PlanningRow
			priority, notes sql.NullString
		)
		if err := rows.Scan(&row.MetricName, &row.Category, &priority, &notes); err != nil {
			rows.Close()
			return nil, err
		}
		row.Variant = v
		row.Priority = strPtr(priority)
		row.Notes = strPtr(notes)
		index[row.MetricName] = len(out)
		out = append(out, row)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachExisting(ctx, v, out, index); err != nil {
		return nil, err
	}
	if err := r.attachPlanned(ctx, v, out, index); err != nil {
		return nil, err
	}

	for i := range out {
		regions := map[string]struct{}{}
		engines := map[string]struct{}{}
		tcids := map[string]struct{}{}
		for _, d := range out[i].Existing {
			if d.Region != nil {
				regions[*d.Region] = struct{}{}
			}
			if d.Engine != nil {
				engines[*d.Engine] = struct{}{}
			}
			tcids[d.TCID] = struct{}{}
		}
		out[i].RegionCount = len(regions)
		out[i].EngineCount = len(engines)
		out[i].TCIDCount = len(tcids)
	}
	return out, nil
}

func (r *PlanningRepo) attachExisting(ctx context.Context, v domain.Variant, out []domain.PlanningRow, index map[string]int) error {
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT l.metric_name, l.id, c.tc_id, c.title, l.region, l.engine
		FROM coverage_links l
		JOIN coverage c ON c.id = l.coverage_id AND c.is_deleted = 0
		WHERE l.metric_variant = ? AND l.is_deleted = 0
		  AND `+excludeExceptions+`
		ORDER BY l.metric_name, l.engine IS NULL, l.engine, l.region IS NULL, l.region, c.tc_id
	`, string(v))
	if err != nil {
		return mapDBError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			metric                string
			d                     domain.LinkDetail
			title, region, engine sql.NullString
		)
		if err := rows.Scan(&metric, &d.LinkID, &d.TCID, &title, &region, &engine); err != nil {
			return err
		}
		i, ok := index[metric]
		if !ok {
			continue
		}
		d.Title = strPtr(title)
		d.Region = strPtr(region)
		d.Engine = strPtr(engine)
		out[i].Existing = append(out[i].Existing, d)
	}
	return rows.Err()
}

func (r *PlanningRepo) attachPlanned(ctx context.Context, v domain.Variant, out []domain.PlanningRow, index map[string]int) error {
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT id, metric_name, metric_variant, priority, notes, tc_id, region, engine,
		       is_deleted, created_at, updated_at
		FROM planning
		WHERE metric_variant = ? AND is_deleted = 0
		  AND tc_id IS NULL AND (region IS NOT NULL OR engine IS NOT NULL)
		ORDER BY metric_name, engine IS NULL, engine, region IS NULL, region
	`, string(v))
	if err != nil {
		return mapDBError(err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanPlanningEntry(rows)
		if err != nil {
			return err
		}
		i, ok := index[e.MetricName]
		if !ok {
			continue
		}
		out[i].Planned = append(out[i].Planned, *e)
	}
	return rows.Err()
}

// SetPriority upserts the holder row's priority for one metric.
func (r *PlanningRepo) SetPriority(ctx context.Context, name string, v domain.Variant, priority string) error {
	if !v.Valid() {
		return domain.ErrValidation("unknown metric variant %q", v)
	}
	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO planning (metric_name, metric_variant, priority)
		VALUES (?, ?, ?)
		`+holderConflict+`
		DO UPDATE SET priority = excluded.priority, is_deleted = 0
	`, name, string(v), priority)
	return mapDBError(err)
}

// SaveNotes upserts the holder row's notes for one metric.
func (r *PlanningRepo) SaveNotes(ctx context.Context, name string, v domain.Variant, notes string) error {
	if !v.Valid() {
		return domain.ErrValidation("unknown metric variant %q", v)
	}
	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO planning (metric_name, metric_variant, notes)
		VALUES (?, ?, ?)
		`+holderConflict+`
		DO UPDATE SET notes = excluded.notes, is_deleted = 0
	`, name, string(v), notes)
	return mapDBError(err)
}

// AddPlan inserts a planned region/engine combination. A duplicate
// combination for the same metric maps to a conflict error.
func (r *PlanningRepo) AddPlan(ctx context.Context, e *domain.PlanningEntry) (*domain.PlanningEntry, error) {
	if e == nil {
		return nil, domain.ErrValidation("planning entry is required")
	}
	if !e.Variant.Valid() {
		return nil, domain.ErrValidation("unknown metric variant %q", e.Variant)
	}
	if e.Region == nil && e.Engine == nil {
		return nil, domain.ErrValidation("a plan needs a region or an engine")
	}

	res, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO planning (metric_name, metric_variant, region, engine)
		VALUES (?, ?, ?, ?)
	`, e.MetricName, string(e.Variant), nullStr(e.Region), nullStr(e.Engine))
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetPlan(ctx, id)
}

// GetPlan returns one planning row by id.
func (r *PlanningRepo) GetPlan(ctx context.Context, id int64) (*domain.PlanningEntry, error) {
	row := r.readDB.QueryRowContext(ctx, `
		SELECT id, metric_name, metric_variant, priority, notes, tc_id, region, engine,
		       is_deleted, created_at, updated_at
		FROM planning WHERE id = ?
	`, id)
	e, err := scanPlanningEntry(row)
	if err != nil {
		return nil, mapDBError(err)
	}
	return e, nil
}

// RemovePlan deletes a planned combination. Holder rows cannot be removed
// this way.
func (r *PlanningRepo) RemovePlan(ctx context.Context, id int64) error {
	res, err := r.writeDB.ExecContext(ctx, `
		DELETE FROM planning
		WHERE id = ? AND tc_id IS NULL AND (region IS NOT NULL OR engine IS NOT NULL)
	`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("plan %d not found", id)
	}
	return nil
}

// Promote converts a planned combination into a coverage link under tcid
// and deletes the plan. The link insert, the root upsert, and the plan
// delete commit together or not at all.
func (r *PlanningRepo) Promote(ctx context.Context, planID int64, tcid string, title *string) (*domain.PromoteResult, error) {
	if tcid == "" {
		return nil, domain.ErrValidation("tc_id is required")
	}

	tx, err := r.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		metric, variant sql.NullString
		region, engine  sql.NullString
	)
	err = tx.QueryRowContext(ctx, `
		SELECT metric_name, metric_variant, region, engine
		FROM planning
		WHERE id = ? AND is_deleted = 0 AND tc_id IS NULL
		  AND (region IS NOT NULL OR engine IS NOT NULL)
	`, planID).Scan(&metric, &variant, &region, &engine)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound("plan %d not found", planID)
		}
		return nil, mapDBError(err)
	}

	var existed int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM coverage WHERE tc_id = ? AND is_deleted = 0`, tcid).Scan(&existed); err != nil {
		return nil, mapDBError(err)
	}

	rootID, err := ensureRoot(ctx, tx, tcid, title)
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO coverage_links
			(coverage_id, metric_name, metric_variant, region, engine)
		VALUES (?, ?, ?, ?, ?)
	`, rootID, metric.String, variant.String, region, engine)
	if err != nil {
		return nil, mapDBError(err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM planning WHERE id = ?`, planID); err != nil {
		return nil, mapDBError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &domain.PromoteResult{
		TCID:          tcid,
		LinkInserted:  inserted > 0,
		CreatedRoot:   existed == 0,
		RemovedPlanID: planID,
	}, nil
}

func scanPlanningEntry(row rowScanner) (*domain.PlanningEntry, error) {
	var (
		e                    domain.PlanningEntry
		variant              string
		priority, notes      sql.NullString
		tcid, region, engine sql.NullString
		deleted              int64
	)
	err := row.Scan(&e.ID, &e.MetricName, &variant, &priority, &notes,
		&tcid, &region, &engine, &deleted, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Variant = domain.Variant(variant)
	e.Priority = strPtr(priority)
	e.Notes = strPtr(notes)
	e.TCID = strPtr(tcid)
	e.Region = strPtr(region)
	e.Engine = strPtr(engine)
	e.IsDeleted = deleted != 0
	return &e, nil
}
