package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "covtrack/internal/db"
	"covtrack/internal/domain"
)

func TestEngineRepo_SeededDefaults(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	repo := NewEngineRepo(writeDB, readDB)

	engines, err := repo.List(context.Background())
	require.NoError(t, err)
	var names []string
	for _, e := range engines {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "google")
	assert.Contains(t, names, "duckduckgo")
	assert.Contains(t, names, "baidu")
}

func TestEngineRepo_AddRemove(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	repo := NewEngineRepo(writeDB, readDB)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, "  Startpage "))

	engines, err := repo.List(ctx)
	require.NoError(t, err)
	var names []string
	for _, e := range engines {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "startpage")

	var conflict *domain.ConflictError
	assert.ErrorAs(t, repo.Add(ctx, "startpage"), &conflict)

	require.NoError(t, repo.Remove(ctx, "startpage"))
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, repo.Remove(ctx, "startpage"), &notFound)
}

func TestExceptionRepo_Lifecycle(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	repo := NewExceptionRepo(writeDB, readDB)
	ctx := context.Background()

	e, err := repo.Create(ctx, &domain.Exception{TCID: "404", Reason: strp("retired suite")})
	require.NoError(t, err)
	assert.Equal(t, "404", e.TCID)

	live, err := repo.ExistsLive(ctx, "404")
	require.NoError(t, err)
	assert.True(t, live)

	require.NoError(t, repo.SetDeleted(ctx, "404", true))
	live, err = repo.ExistsLive(ctx, "404")
	require.NoError(t, err)
	assert.False(t, live)

	// Re-creating revives the row in place.
	e, err = repo.Create(ctx, &domain.Exception{TCID: "404", Reason: strp("still retired")})
	require.NoError(t, err)
	assert.False(t, e.IsDeleted)
	require.NotNil(t, e.Reason)
	assert.Equal(t, "still retired", *e.Reason)

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
