package metrics

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
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
	svc       *Service
	importer  *Importer
	history   *repository.HistoryRepo
	reportDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	history := repository.NewHistoryRepo(writeDB, readDB)
	svc := NewService(repository.NewMetricRepo(writeDB, readDB), history)

	dir := t.TempDir()
	store, err := reports.NewStore(dir)
	require.NoError(t, err)

	return &fixture{
		svc:       svc,
		importer:  NewImporter(svc, store),
		history:   history,
		reportDir: dir,
	}
}

func TestService_AddValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.Add(ctx, &domain.Metric{Name: "   ", Variant: domain.VariantGlean})
	require.ErrorAs(t, err, &verr)

	_, err = f.svc.Add(ctx, &domain.Metric{Name: "a.b", Variant: domain.Variant("bogus")})
	require.ErrorAs(t, err, &verr)
}

func TestService_AddTrimsAndLogsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := domain.WithPrincipal(context.Background(),
		domain.ContextPrincipal{Name: "alice", Role: domain.RoleAdmin})

	m, err := f.svc.Add(ctx, &domain.Metric{Name: "  browser.search.with_ads  ", Variant: domain.VariantGlean})
	require.NoError(t, err)
	assert.Equal(t, "browser.search.with_ads", m.Name)
	assert.Equal(t, domain.DefaultCategory, m.Category)

	entries, total, err := f.history.List(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "alice", entries[0].Username)
	assert.Equal(t, "create", entries[0].Action)
	assert.Equal(t, "glean_metrics", entries[0].TableName)
	assert.Equal(t, "browser.search.with_ads", entries[0].RecordKey)
}

func TestService_UpdateUnknownMetric(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), "no.such", domain.VariantGlean, domain.MetricPatch{})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestImporter_RowsSettleIndependently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, &domain.Metric{Name: "already.there", Variant: domain.VariantGlean})
	require.NoError(t, err)

	// Positional columns: name, category, expiration, description,
	// search_metric, cross_reference. Trailing columns are optional.
	input := strings.Join([]string{
		"name,category,expiration,description,search_metric,cross_reference",
		"fresh.metric,events,,,true,",
		"already.there,events,,,false,",
		",events,,,false,",
	}, "\n")

	report, err := f.importer.Import(ctx, domain.VariantGlean, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.Errors)
	assert.Equal(t, report.Total, report.Inserted+report.Duplicates+report.Errors)

	m, err := f.svc.Get(ctx, "fresh.metric", domain.VariantGlean)
	require.NoError(t, err)
	assert.Equal(t, "events", m.Category)
	assert.True(t, m.SearchMetric)
}

func TestImporter_WritesAnnotatedReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := "name\ngood.one\n"
	report, err := f.importer.Import(ctx, domain.VariantLegacy, strings.NewReader(input))
	require.NoError(t, err)
	require.NotEmpty(t, report.ReportFile)

	raw, err := os.ReadFile(filepath.Join(f.reportDir, report.ReportFile))
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"name", "status"}, rows[0])
	assert.Equal(t, []string{"good.one", domain.RowInserted}, rows[1])
}

func TestImporter_RejectsEmptyInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.importer.Import(context.Background(), domain.VariantGlean,
		strings.NewReader(""))
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestImporter_BlankNameRowIsPerRowError(t *testing.T) {
	f := newFixture(t)

	report, err := f.importer.Import(context.Background(), domain.VariantGlean,
		strings.NewReader("name,category\n,events\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, report.Errors)
}

func TestService_ExportRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	desc := "counts ad impressions"
	_, err := f.svc.Add(ctx, &domain.Metric{
		Name:         "browser.search.with_ads",
		Variant:      domain.VariantGlean,
		Category:     "labeled_counter",
		Description:  &desc,
		SearchMetric: true,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, domain.VariantGlean, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, importHeader, rows[0])
	assert.Equal(t, "browser.search.with_ads", rows[1][0])
	assert.Equal(t, "labeled_counter", rows[1][1])
	assert.Equal(t, "true", rows[1][4])
}
