package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "covtrack/internal/db"
	"covtrack/internal/domain"
)

func TestUserRepo_CRUD(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	repo := NewUserRepo(writeDB, readDB)
	ctx := context.Background()

	u, err := repo.Create(ctx, &domain.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
		Role:         domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	_, err = repo.Create(ctx, &domain.User{
		Username: "alice", Email: "other@example.com", PasswordHash: "x", Role: domain.RoleViewer,
	})
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	found, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	admins, err := repo.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)

	require.NoError(t, repo.SetRole(ctx, u.ID, domain.RoleViewer))
	admins, err = repo.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), admins)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = repo.GetByID(ctx, u.ID)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestUserRepo_RejectsUnknownRole(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	repo := NewUserRepo(writeDB, readDB)

	_, err := repo.Create(context.Background(), &domain.User{
		Username: "bob", Email: "bob@example.com", PasswordHash: "x", Role: "superuser",
	})
	var invalid *domain.ValidationError
	assert.ErrorAs(t, err, &invalid)
}
