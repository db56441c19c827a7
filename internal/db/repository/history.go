package repository

import (
	"context"
	"database/sql"
	"strings"

	"covtrack/internal/domain"
)

var _ domain.HistoryRepository = (*HistoryRepo)(nil)

// HistoryRepo stores immutable edit history entries in SQLite.
type HistoryRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewHistoryRepo creates a new HistoryRepo.
func NewHistoryRepo(writeDB, readDB *sql.DB) *HistoryRepo {
	return &HistoryRepo{writeDB: writeDB, readDB: readDB}
}

// Insert records one edit history entry.
func (r *HistoryRepo) Insert(ctx context.Context, e *domain.HistoryEntry) error {
	if e == nil {
		return domain.ErrValidation("history entry is required")
	}
	if e.ID == "" {
		e.ID = domain.NewID()
	}

	_, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO edit_history (id, username, action, table_name, record_key, details)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Username, e.Action, e.TableName, e.RecordKey, nullStr(e.Details))
	return mapDBError(err)
}

// List returns edit history entries matching the filter, newest first,
// along with the total match count.
func (r *HistoryRepo) List(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, int64, error) {
	conds := []string{"1 = 1"}
	args := []any{}
	if filter.Username != nil {
		conds = append(conds, "username = ?")
		args = append(args, *filter.Username)
	}
	if filter.Action != nil {
		conds = append(conds, "action = ?")
		args = append(args, *filter.Action)
	}
	if filter.TableName != nil {
		conds = append(conds, "table_name = ?")
		args = append(args, *filter.TableName)
	}
	if filter.Since != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *filter.Since)
	}
	where := strings.Join(conds, " AND ")

	var total int64
	err := r.readDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM edit_history WHERE "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, mapDBError(err)
	}

	pagedArgs := append(args, filter.Page.Limit(), filter.Page.Offset())
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT id, username, action, table_name, record_key, details, created_at
		FROM edit_history WHERE `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, pagedArgs...)
	if err != nil {
		return nil, 0, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.HistoryEntry
	for rows.Next() {
		var (
			e       domain.HistoryEntry
			details sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.TableName,
			&e.RecordKey, &details, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Details = strPtr(details)
		out = append(out, e)
	}
	return out, total, rows.Err()
}
