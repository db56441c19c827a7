package repository

import (
	"context"
	"database/sql"
	"strings"

	"covtrack/internal/domain"
)

var _ domain.UserRepository = (*UserRepo)(nil)

// UserRepo stores accounts in SQLite.
type UserRepo struct {
	writeDB *sql.DB
	readDB  *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(writeDB, readDB *sql.DB) *UserRepo {
	return &UserRepo{writeDB: writeDB, readDB: readDB}
}

// Create inserts a new account.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u == nil {
		return nil, domain.ErrValidation("user is required")
	}
	if strings.TrimSpace(u.Username) == "" {
		return nil, domain.ErrValidation("username is required")
	}
	if !domain.ValidRole(u.Role) {
		return nil, domain.ErrValidation("unknown role %q", u.Role)
	}

	res, err := r.writeDB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES (?, ?, ?, ?)
	`, u.Username, u.Email, u.PasswordHash, u.Role)
	if err != nil {
		return nil, mapDBError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByUsername returns one account by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users WHERE username = ?
	`, username)
}

// GetByID returns one account by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getOne(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users WHERE id = ?
	`, id)
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.readDB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, mapDBError(err)
	}
	return &u, nil
}

// List returns all accounts ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.readDB.QueryContext(ctx, `
		SELECT id, username, email, password_hash, role, created_at
		FROM users ORDER BY username
	`)
	if err != nil {
		return nil, mapDBError(err)
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetRole changes an account's role.
func (r *UserRepo) SetRole(ctx context.Context, id int64, role string) error {
	if !domain.ValidRole(role) {
		return domain.ErrValidation("unknown role %q", role)
	}
	res, err := r.writeDB.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("user %d not found", id)
	}
	return nil
}

// Delete removes an account.
func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.writeDB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("user %d not found", id)
	}
	return nil
}

// CountAdmins returns the number of admin accounts.
func (r *UserRepo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.readDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, domain.RoleAdmin).Scan(&n)
	if err != nil {
		return 0, mapDBError(err)
	}
	return n, nil
}
