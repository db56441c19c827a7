package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "covtrack/internal/db"
	"covtrack/internal/domain"
)

func setupMetricRepo(t *testing.T) *MetricRepo {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	return NewMetricRepo(writeDB, readDB)
}

func strp(s string) *string { return &s }

func TestMetricRepo_CRUD(t *testing.T) {
	repo := setupMetricRepo(t)
	ctx := context.Background()

	// Create
	m, err := repo.Create(ctx, &domain.Metric{
		Name:        "browser.search.ad_clicks",
		Variant:     domain.VariantGlean,
		Category:    "labeled_counter",
		Description: strp("Ad clicks per engine"),
	})
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "browser.search.ad_clicks", m.Name)
	assert.Equal(t, domain.VariantGlean, m.Variant)
	assert.Equal(t, "labeled_counter", m.Category)
	assert.False(t, m.IsDeleted)

	// Duplicate name conflicts
	_, err = repo.Create(ctx, &domain.Metric{
		Name:    "browser.search.ad_clicks",
		Variant: domain.VariantGlean,
	})
	require.Error(t, err)
	var conflict *domain.ConflictError
	assert.ErrorAs(t, err, &conflict)

	// Same name under the other variant is fine
	_, err = repo.Create(ctx, &domain.Metric{
		Name:    "browser.search.ad_clicks",
		Variant: domain.VariantLegacy,
	})
	require.NoError(t, err)

	// Update
	m, err = repo.Update(ctx, "browser.search.ad_clicks", domain.VariantGlean, domain.MetricPatch{
		Category:   strp("event"),
		Expiration: strp("never"),
	})
	require.NoError(t, err)
	assert.Equal(t, "event", m.Category)
	require.NotNil(t, m.Expiration)
	assert.Equal(t, "never", *m.Expiration)
	require.NotNil(t, m.Description)
	assert.Equal(t, "Ad clicks per engine", *m.Description)

	// Get unknown
	_, err = repo.Get(ctx, "nope", domain.VariantGlean)
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	// List is variant scoped
	glean, err := repo.List(ctx, domain.VariantGlean, false)
	require.NoError(t, err)
	assert.Len(t, glean, 1)
}

func TestMetricRepo_DefaultCategory(t *testing.T) {
	repo := setupMetricRepo(t)
	ctx := context.Background()

	m, err := repo.Create(ctx, &domain.Metric{
		Name:    "browser.engagement.uri_count",
		Variant: domain.VariantGlean,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCategory, m.Category)
}

func TestMetricRepo_SoftDelete(t *testing.T) {
	repo := setupMetricRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Metric{Name: "urlbar.impression", Variant: domain.VariantGlean})
	require.NoError(t, err)

	require.NoError(t, repo.SetDeleted(ctx, "urlbar.impression", domain.VariantGlean, true))

	live, err := repo.List(ctx, domain.VariantGlean, false)
	require.NoError(t, err)
	assert.Empty(t, live)

	all, err := repo.List(ctx, domain.VariantGlean, true)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].IsDeleted)

	// Deleted metrics reject updates
	_, err = repo.Update(ctx, "urlbar.impression", domain.VariantGlean, domain.MetricPatch{
		Category: strp("event"),
	})
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	// Restore
	require.NoError(t, repo.SetDeleted(ctx, "urlbar.impression", domain.VariantGlean, false))
	live, err = repo.List(ctx, domain.VariantGlean, false)
	require.NoError(t, err)
	assert.Len(t, live, 1)
}

func TestMetricRepo_FilterExisting(t *testing.T) {
	repo := setupMetricRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Metric{Name: "a.b", Variant: domain.VariantGlean})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Metric{Name: "c.d", Variant: domain.VariantGlean})
	require.NoError(t, err)
	require.NoError(t, repo.SetDeleted(ctx, "c.d", domain.VariantGlean, true))

	found, err := repo.FilterExisting(ctx, domain.VariantGlean, []string{"a.b", "c.d", "x.y"})
	require.NoError(t, err)
	assert.True(t, found["a.b"])
	assert.False(t, found["c.d"])
	assert.False(t, found["x.y"])
}

func TestMetricRepo_Categories(t *testing.T) {
	repo := setupMetricRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Metric{Name: "a.b", Variant: domain.VariantGlean, Category: "event"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Metric{Name: "c.d", Variant: domain.VariantLegacy, Category: "scalar"})
	require.NoError(t, err)

	cats, err := repo.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, domain.CategoryOption{Name: "event", Source: "Glean"}, cats[0])
	assert.Equal(t, domain.CategoryOption{Name: "scalar", Source: "Legacy"}, cats[1])
}
