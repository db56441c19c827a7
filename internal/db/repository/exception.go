package repository

import (
	"context"
	"database/sql"
	"fmt"

	"covtrack/internal/domain"
)

var _ domain.ExceptionRepository = (*ExceptionRepo)(nil)

// ExceptionRepo stores excluded TCIDs in SQLite.
type ExceptionRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewExceptionRepo creates a new ExceptionRepo.
func NewExceptionRepo(writeDB, readDB *sql.DB) *ExceptionRepo {
	return &ExceptionRepo{writeDB: writeDB, readDB: readDB}
}

// Create inserts a new exception. Re-adding a soft-deleted TCID revives it.
func (r *ExceptionRepo) Create(ctx context.Context, e *domain.Exception) (*domain.Exception, error) {
	if e == nil || e.TCID == "" {
		return nil, domain.ErrValidation("tc_id is required")
	}

	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO exceptions (tc_id, reason)
		VALUES (?, ?)
		ON CONFLICT (tc_id) DO UPDATE SET reason = excluded.reason, is_deleted = 0
	`, e.TCID, nullStr(e.Reason))
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.get(ctx, e.TCID)
}

func (r *ExceptionRepo) get(ctx context.Context, tcid string) (*domain.Exception, error) {
	row := r.readDB.QueryRowContext(ctx, `
		SELECT id, tc_id, reason, is_deleted, created_at
		FROM exceptions WHERE tc_id = ?
	`, tcid)

	var (
		e       domain.Exception
		reason  sql.NullString
		deleted int64
	)
	if err := row.Scan(&e.ID, &e.TCID, &reason, &deleted, &e.CreatedAt); err != nil {
		return nil, mapDBError(err)
	}
	e.Reason = strPtr(reason)
	e.IsDeleted = deleted != 0
	return &e, nil
}

// List returns exceptions ordered by TCID.
func (r *ExceptionRepo) List(ctx context.Context, includeDeleted bool) ([]domain.Exception, error) {
	where := "WHERE is_deleted = 0"
	if includeDeleted {
		where = ""
	}
	rows, err := r.readDB.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, tc_id, reason, is_deleted, created_at
		FROM exceptions %s ORDER BY tc_id
	`, where))
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.Exception
	for rows.Next() {
		var (
			e       domain.Exception
			reason  sql.NullString
			deleted int64
		)
		if err := rows.Scan(&e.ID, &e.TCID, &reason, &deleted, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Reason = strPtr(reason)
		e.IsDeleted = deleted != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

// ExistsLive reports whether a TCID is currently excluded.
func (r *ExceptionRepo) ExistsLive(ctx context.Context, tcid string) (bool, error) {
	var n int64
	err := r.readDB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM exceptions WHERE tc_id = ? AND is_deleted = 0
	`, tcid).Scan(&n)
	if err != nil {
		return false, mapDBError(err)
	}
	return n > 0, nil
}

// SetDeleted flips the soft-delete flag on an exception.
func (r *ExceptionRepo) SetDeleted(ctx context.Context, tcid string, deleted bool) error {
	res, err := r.writeDB.ExecContext(ctx, `
		UPDATE exceptions SET is_deleted = ? WHERE tc_id = ?
	`, boolToInt(deleted), tcid)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("exception for TCID %q not found", tcid)
	}
	return nil
}
