package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "covtrack/internal/db"
	"covtrack/internal/domain"
)

type coverageFixture struct {
	metrics    *MetricRepo
	coverage   *CoverageRepo
	exceptions *ExceptionRepo
}

func setupCoverage(t *testing.T) coverageFixture {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	return coverageFixture{
		metrics:    NewMetricRepo(writeDB, readDB),
		coverage:   NewCoverageRepo(writeDB, readDB),
		exceptions: NewExceptionRepo(writeDB, readDB),
	}
}

func (f coverageFixture) addMetric(t *testing.T, name string, v domain.Variant) {
	t.Helper()
	_, err := f.metrics.Create(context.Background(), &domain.Metric{Name: name, Variant: v})
	require.NoError(t, err)
}

func TestCoverageRepo_AddLinksCartesian(t *testing.T) {
	f := setupCoverage(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)
	f.addMetric(t, "browser.search.content", domain.VariantGlean)

	refs := []domain.MetricRef{
		{Name: "browser.search.with_ads", Variant: domain.VariantGlean},
		{Name: "browser.search.content", Variant: domain.VariantGlean},
	}
	res, err := f.coverage.AddLinks(ctx, "1042", strp("Ad impression smoke test"),
		refs, []string{"US", "DE"}, []string{"google"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Inserted)
	assert.Equal(t, int64(0), res.Duplicates)

	// Replaying the same batch only yields duplicates.
	res, err = f.coverage.AddLinks(ctx, "1042", nil, refs, []string{"US", "DE"}, []string{"google"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Inserted)
	assert.Equal(t, int64(4), res.Duplicates)

	root, err := f.coverage.GetRootByTCID(ctx, "1042")
	require.NoError(t, err)
	require.NotNil(t, root.Title)
	assert.Equal(t, "Ad impression smoke test", *root.Title)
}

func TestCoverageRepo_AddLinksAbsentDimensions(t *testing.T) {
	f := setupCoverage(t)
	ctx := context.Background()
	f.addMetric(t, "urlbar.engagement", domain.VariantGlean)

	refs := []domain.MetricRef{{Name: "urlbar.engagement", Variant: domain.VariantGlean}}

	// No regions, no engines: one link with both dimensions NULL.
	res, err := f.coverage.AddLinks(ctx, "2001", nil, refs, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Inserted)

	// Sentinel strings are stored as NULL too, so this is a duplicate.
	res, err = f.coverage.AddLinks(ctx, "2001", nil, refs,
		[]string{domain.NoRegion}, []string{domain.NoEngine})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Inserted)
	assert.Equal(t, int64(1), res.Duplicates)

	details, err := f.coverage.DetailsForMetric(ctx, "urlbar.engagement", domain.VariantGlean)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Nil(t, details[0].Region)
	assert.Nil(t, details[0].Engine)

	// Region present, engine absent: the NULL engine still dedups.
	res, err = f.coverage.AddLinks(ctx, "2001", nil, refs, []string{"US"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Inserted)
	res, err = f.coverage.AddLinks(ctx, "2001", nil, refs, []string{"US"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Inserted)
	assert.Equal(t, int64(1), res.Duplicates)
}

func TestCoverageRepo_DetailsOrderAbsentLast(t *testing.T) {
	f := setupCoverage(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.content", domain.VariantGlean)

	refs := []domain.MetricRef{{Name: "browser.search.content", Variant: domain.VariantGlean}}
	_, err := f.coverage.AddLinks(ctx, "3001", nil, refs, nil, nil)
	require.NoError(t, err)
	_, err = f.coverage.AddLinks(ctx, "3001", nil, refs, []string{"US"}, []string{"bing"})
	require.NoError(t, err)
	_, err = f.coverage.AddLinks(ctx, "3001", nil, refs, []string{"DE"}, nil)
	require.NoError(t, err)

	details, err := f.coverage.DetailsForMetric(ctx, "browser.search.content", domain.VariantGlean)
	require.NoError(t, err)
	require.Len(t, details, 3)
	// Engine-major: rows with an engine first, then by region, fully
	// absent row last.
	require.NotNil(t, details[0].Engine)
	assert.Equal(t, "bing", *details[0].Engine)
	require.NotNil(t, details[1].Region)
	assert.Equal(t, "DE", *details[1].Region)
	assert.Nil(t, details[1].Engine)
	assert.Nil(t, details[2].Region)
	assert.Nil(t, details[2].Engine)
}

func TestCoverageRepo_SummariesAndCounts(t *testing.T) {
	f := setupCoverage(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)
	f.addMetric(t, "browser.search.uncovered", domain.VariantGlean)

	refs := []domain.MetricRef{{Name: "browser.search.with_ads", Variant: domain.VariantGlean}}
	_, err := f.coverage.AddLinks(ctx, "4001", nil, refs, []string{"US", "DE"}, []string{"google", "bing"})
	require.NoError(t, err)
	_, err = f.coverage.AddLinks(ctx, "4002", nil, refs, []string{"US"}, []string{"google"})
	require.NoError(t, err)

	sums, err := f.coverage.MetricSummaries(ctx, domain.VariantGlean)
	require.NoError(t, err)
	require.Len(t, sums, 1) // uncovered metric has no summary row
	s := sums[0]
	assert.Equal(t, "browser.search.with_ads", s.MetricName)
	assert.Equal(t, 2, s.RegionCount)
	assert.Equal(t, 2, s.EngineCount)
	assert.Equal(t, 2, s.TCIDCount)
	assert.Len(t, s.Details, 5)

	// Report rows include the uncovered metric at zero.
	report, err := f.coverage.ReportRows(ctx, domain.VariantGlean)
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, "browser.search.uncovered", report[0].MetricName)
	assert.Equal(t, int64(0), report[0].TCIDCount)
	assert.Equal(t, "browser.search.with_ads", report[1].MetricName)
	assert.Equal(t, int64(2), report[1].TCIDCount)
}

func TestCoverageRepo_ExceptionsExcluded(t *testing.T) {
	f := setupCoverage(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.content", domain.VariantGlean)

	refs := []domain.MetricRef{{Name: "browser.search.content", Variant: domain.VariantGlean}}
	_, err := f.coverage.AddLinks(ctx, "5001", nil, refs, []string{"US"}, nil)
	require.NoError(t, err)
	_, err = f.coverage.AddLinks(ctx, "5002", nil, refs, []string{"DE"}, nil)
	require.NoError(t, err)

	_, err = f.exceptions.Create(ctx, &domain.Exception{TCID: "5002", Reason: strp("flaky suite")})
	require.NoError(t, err)

	details, err := f.coverage.DetailsForMetric(ctx, "browser.search.content", domain.VariantGlean)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "5001", details[0].TCID)

	stats, err := f.coverage.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.GleanCoveredTCs)

	// Reviving the exception brings the rows back.
	require.NoError(t, f.exceptions.SetDeleted(ctx, "5002", true))
	details, err = f.coverage.DetailsForMetric(ctx, "browser.search.content", domain.VariantGlean)
	require.NoError(t, err)
	assert.Len(t, details, 2)
}

func TestCoverageRepo_SoftDeleteRoot(t *testing.T) {
	f := setupCoverage(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.content", domain.VariantGlean)

	refs := []domain.MetricRef{{Name: "browser.search.content", Variant: domain.VariantGlean}}
	_, err := f.coverage.AddLinks(ctx, "6001", nil, refs, []string{"US"}, nil)
	require.NoError(t, err)

	require.NoError(t, f.coverage.SetRootDeleted(ctx, "6001", true))

	_, err = f.coverage.GetRootByTCID(ctx, "6001")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	details, err := f.coverage.DetailsForMetric(ctx, "browser.search.content", domain.VariantGlean)
	require.NoError(t, err)
	assert.Empty(t, details)

	// Adding coverage for the TCID again revives the root.
	_, err = f.coverage.AddLinks(ctx, "6001", nil, refs, []string{"DE"}, nil)
	require.NoError(t, err)
	root, err := f.coverage.GetRootByTCID(ctx, "6001")
	require.NoError(t, err)
	assert.Equal(t, "6001", root.TCID)
}

func TestCoverageRepo_Suggest(t *testing.T) {
	f := setupCoverage(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.content", domain.VariantGlean)

	refs := []domain.MetricRef{{Name: "browser.search.content", Variant: domain.VariantGlean}}
	_, err := f.coverage.AddLinks(ctx, "7001", strp("SERP impression"), refs, nil, nil)
	require.NoError(t, err)
	_, err = f.coverage.AddLinks(ctx, "7002", strp("Ad click"), refs, nil, nil)
	require.NoError(t, err)

	byID, err := f.coverage.Suggest(ctx, "700", 10)
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	byTitle, err := f.coverage.Suggest(ctx, "SERP", 10)
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, "7001", byTitle[0].TCID)
}
