package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "covtrack/internal/db"
	"covtrack/internal/domain"
)

func TestHistoryRepo_InsertAndList(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	repo := NewHistoryRepo(writeDB, readDB)
	ctx := context.Background()

	entries := []domain.HistoryEntry{
		{Username: "alice", Action: "create", TableName: "glean_metrics", RecordKey: "a.b"},
		{Username: "bob", Action: "delete", TableName: "coverage", RecordKey: "1042"},
		{Username: "alice", Action: "update", TableName: "glean_metrics", RecordKey: "a.b"},
	}
	for i := range entries {
		require.NoError(t, repo.Insert(ctx, &entries[i]))
		assert.NotEmpty(t, entries[i].ID)
	}

	all, total, err := repo.List(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	alice := "alice"
	filtered, total, err := repo.List(ctx, domain.HistoryFilter{Username: &alice})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, e := range filtered {
		assert.Equal(t, "alice", e.Username)
	}

	tbl := "coverage"
	filtered, total, err = repo.List(ctx, domain.HistoryFilter{TableName: &tbl})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "1042", filtered[0].RecordKey)
}

func TestHistoryRepo_Pagination(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	repo := NewHistoryRepo(writeDB, readDB)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, &domain.HistoryEntry{
			Username: "alice", Action: "create", TableName: "coverage", RecordKey: "x",
		}))
	}

	page, total, err := repo.List(ctx, domain.HistoryFilter{Page: domain.PageRequest{MaxResults: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	token := domain.NextPageToken(0, 2, total)
	require.NotEmpty(t, token)
	page, _, err = repo.List(ctx, domain.HistoryFilter{
		Page: domain.PageRequest{MaxResults: 2, PageToken: token},
	})
	require.NoError(t, err)
	assert.Len(t, page, 2)
}
