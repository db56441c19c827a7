package coverage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "covtrack/internal/db"
	"covtrack/internal/db/repository"
	"covtrack/internal/domain"
	"covtrack/internal/reports"
)

type fixture struct {
	svc        *Service
	importer   *Importer
	store      *reports.Store
	metrics    *repository.MetricRepo
	exceptions *repository.ExceptionRepo
	history    *repository.HistoryRepo
}

func setup(t *testing.T) fixture {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)

	metricRepo := repository.NewMetricRepo(writeDB, readDB)
	coverageRepo := repository.NewCoverageRepo(writeDB, readDB)
	exceptionRepo := repository.NewExceptionRepo(writeDB, readDB)
	historyRepo := repository.NewHistoryRepo(writeDB, readDB)

	svc := NewService(coverageRepo, metricRepo, exceptionRepo, historyRepo)

	store, err := reports.NewStore(t.TempDir())
	require.NoError(t, err)

	return fixture{
		svc:        svc,
		importer:   NewImporter(svc, store),
		store:      store,
		metrics:    metricRepo,
		exceptions: exceptionRepo,
		history:    historyRepo,
	}
}

func (f fixture) addMetric(t *testing.T, name string, v domain.Variant) {
	t.Helper()
	_, err := f.metrics.Create(context.Background(), &domain.Metric{Name: name, Variant: v})
	require.NoError(t, err)
}

func TestService_AddEntryNormalizesTCID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)

	res, err := f.svc.AddEntry(ctx, AddEntryInput{
		TCID:    "C1042",
		Variant: domain.VariantGlean,
		Metrics: []string{"browser.search.with_ads"},
		Regions: []string{"US"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1042", res.TCID)
	assert.Equal(t, int64(1), res.Inserted)

	// "TC1042" is the same test case.
	res, err = f.svc.AddEntry(ctx, AddEntryInput{
		TCID:    "TC1042",
		Variant: domain.VariantGlean,
		Metrics: []string{"browser.search.with_ads"},
		Regions: []string{"US"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Inserted)
	assert.Equal(t, int64(1), res.Duplicates)
}

func TestService_AddEntrySkipsUnknownMetrics(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)

	res, err := f.svc.AddEntry(ctx, AddEntryInput{
		TCID:    "2001",
		Variant: domain.VariantGlean,
		Metrics: []string{"browser.search.with_ads", "no.such.metric"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Inserted)
	assert.Equal(t, []string{"no.such.metric"}, res.SkippedMetrics)
	assert.Contains(t, res.Message, "no.such.metric")
}

func TestService_AddEntryAllUnknownFails(t *testing.T) {
	f := setup(t)

	_, err := f.svc.AddEntry(context.Background(), AddEntryInput{
		TCID:    "2002",
		Variant: domain.VariantGlean,
		Metrics: []string{"no.such.metric"},
	})
	var invalid *domain.ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestService_AddEntryRejectsExcludedTCID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)

	_, err := f.exceptions.Create(ctx, &domain.Exception{TCID: "3001"})
	require.NoError(t, err)

	// Normalization applies before the exception check.
	_, err = f.svc.AddEntry(ctx, AddEntryInput{
		TCID:    "C3001",
		Variant: domain.VariantGlean,
		Metrics: []string{"browser.search.with_ads"},
	})
	var invalid *domain.ValidationError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, err.Error(), "exception")
}

func TestService_AddEntryWritesHistory(t *testing.T) {
	f := setup(t)
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)

	ctx := domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		Name: "alice", Role: domain.RoleAdmin,
	})
	_, err := f.svc.AddEntry(ctx, AddEntryInput{
		TCID:    "4001",
		Variant: domain.VariantGlean,
		Metrics: []string{"browser.search.with_ads"},
	})
	require.NoError(t, err)

	entries, _, err := f.history.List(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "add_coverage", entries[0].Action)
	assert.Equal(t, "4001", entries[0].RecordKey)
}

func TestService_SoftDeleteTargets(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)

	_, err := f.svc.AddEntry(ctx, AddEntryInput{
		TCID:    "5001",
		Variant: domain.VariantGlean,
		Metrics: []string{"browser.search.with_ads"},
	})
	require.NoError(t, err)

	err = f.svc.SoftDelete(ctx, domain.SoftDeleteTarget{Kind: domain.DeleteCoverageRoot, Key: "C5001"})
	require.NoError(t, err)

	details, err := f.svc.Details(ctx, "browser.search.with_ads", domain.VariantGlean)
	require.NoError(t, err)
	assert.Empty(t, details)

	require.NoError(t, f.svc.Restore(ctx, domain.SoftDeleteTarget{Kind: domain.DeleteCoverageRoot, Key: "5001"}))
	details, err = f.svc.Details(ctx, "browser.search.with_ads", domain.VariantGlean)
	require.NoError(t, err)
	assert.Len(t, details, 1)

	err = f.svc.SoftDelete(ctx, domain.SoftDeleteTarget{Kind: "mystery", Key: "x"})
	var invalid *domain.ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestImporter_RowsSettleIndependently(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)

	// Positional columns; the list cells carry quoted comma-separated values.
	csvInput := strings.Join([]string{
		"tc_id,title,metrics,metric_variant,region,engine",
		`1042,Ad smoke test,browser.search.with_ads,glean,"US,DE",google`,
		`1042,,browser.search.with_ads,glean,"US,DE",google`,
		"2000,,no.such.metric,glean,,",
		"3000,,browser.search.with_ads,martian,,",
	}, "\n")

	report, err := f.importer.Import(ctx, strings.NewReader(csvInput))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Total)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 2, report.Errors)
	assert.Equal(t, report.Total, report.Inserted+report.Duplicates+report.Errors)
	assert.NotEmpty(t, report.ReportFile)

	// The good row fully landed despite the bad neighbors.
	details, err := f.svc.Details(ctx, "browser.search.with_ads", domain.VariantGlean)
	require.NoError(t, err)
	assert.Len(t, details, 2)
}

func TestImporter_ShortRowIsPerRowError(t *testing.T) {
	f := setup(t)

	report, err := f.importer.Import(context.Background(),
		strings.NewReader("tc_id,title,metrics,metric_variant,region,engine\n1,t\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Errors)
}

func TestImporter_AnnotatesSkippedMetricsAsPartialSuccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)

	csvInput := strings.Join([]string{
		"tc_id,title,metrics,metric_variant,region,engine",
		`4000,Mixed row,"browser.search.with_ads,no.such.metric",glean,US,google`,
	}, "\n")

	report, err := f.importer.Import(ctx, strings.NewReader(csvInput))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 0, report.Errors)

	// The stored report names the skipped metric in the status column.
	rc, err := f.store.Open(report.ReportFile)
	require.NoError(t, err)
	defer rc.Close()
	annotated, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Contains(t, string(annotated), domain.RowPartial)
	assert.Contains(t, string(annotated), "no.such.metric")
}

func TestService_ExportSentinels(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.addMetric(t, "browser.search.with_ads", domain.VariantGlean)

	_, err := f.svc.AddEntry(ctx, AddEntryInput{
		TCID:    "6001",
		Variant: domain.VariantGlean,
		Metrics: []string{"browser.search.with_ads"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, domain.VariantGlean, &buf))
	out := buf.String()
	assert.Contains(t, out, "6001")
	assert.Contains(t, out, domain.NoRegion)
	assert.Contains(t, out, domain.NoEngine)
}
