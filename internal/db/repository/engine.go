package repository

import (
	"context"
	"database/sql"
	"strings"

	"covtrack/internal/domain"
)

var _ domain.EngineRepository = (*EngineRepo)(nil)

// EngineRepo maintains the supported search engine reference list.
type EngineRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewEngineRepo creates a new EngineRepo.
func NewEngineRepo(writeDB, readDB *sql.DB) *EngineRepo {
	return &EngineRepo{writeDB: writeDB, readDB: readDB}
}

// Add registers a search engine name. Names are stored lowercase.
func (r *EngineRepo) Add(ctx context.Context, name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return domain.ErrValidation("engine name is required")
	}
	_, err := r.writeDB.ExecContext(ctx, `INSERT INTO supported_engines (name) VALUES (?)`, name)
	return mapDBError(err)
}

// List returns all supported engines ordered by name.
func (r *EngineRepo) List(ctx context.Context) ([]domain.SupportedEngine, error) {
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT name, created_at FROM supported_engines ORDER BY name
	`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.SupportedEngine
	for rows.Next() {
		var e domain.SupportedEngine
		if err := rows.Scan(&e.Name, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Remove deletes a search engine from the reference list.
func (r *EngineRepo) Remove(ctx context.Context, name string) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM supported_engines WHERE name = ?`,
		strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("engine %q not found", name)
	}
	return nil
}
