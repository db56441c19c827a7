package planning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internaldb "covtrack/internal/db"
	"covtrack/internal/db/repository"
	"covtrack/internal/domain"
)

type fixture struct {
	svc        *Service
	coverage   *repository.CoverageRepo
	exceptions *repository.ExceptionRepo
	history    *repository.HistoryRepo
}

func setup(t *testing.T) fixture {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)

	metricRepo := repository.NewMetricRepo(writeDB, readDB)
	planningRepo := repository.NewPlanningRepo(writeDB, readDB)
	exceptionRepo := repository.NewExceptionRepo(writeDB, readDB)
	historyRepo := repository.NewHistoryRepo(writeDB, readDB)

	_, err := metricRepo.Create(context.Background(), &domain.Metric{
		Name: "browser.search.with_ads", Variant: domain.VariantGlean,
	})
	require.NoError(t, err)

	return fixture{
		svc:        NewService(planningRepo, metricRepo, exceptionRepo, historyRepo),
		coverage:   repository.NewCoverageRepo(writeDB, readDB),
		exceptions: exceptionRepo,
		history:    historyRepo,
	}
}

func TestService_SetPriorityUnknownMetric(t *testing.T) {
	f := setup(t)

	err := f.svc.SetPriority(context.Background(), "no.such.metric", domain.VariantGlean, "P1")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestService_AddPlansCombinations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	added, err := f.svc.AddPlans(ctx, "browser.search.with_ads", domain.VariantGlean,
		[]string{"US", "DE"}, []string{"google"})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Replaying skips existing combinations without failing.
	added, err = f.svc.AddPlans(ctx, "browser.search.with_ads", domain.VariantGlean,
		[]string{"US", "DE", "CA"}, []string{"google"})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	rows, err := f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Planned, 3)
}

func TestService_AddPlansNeedsADimension(t *testing.T) {
	f := setup(t)

	_, err := f.svc.AddPlans(context.Background(), "browser.search.with_ads",
		domain.VariantGlean, nil, nil)
	var invalid *domain.ValidationError
	assert.ErrorAs(t, err, &invalid)
}

func TestService_PromoteNormalizesTCID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.AddPlans(ctx, "browser.search.with_ads", domain.VariantGlean,
		[]string{"US"}, nil)
	require.NoError(t, err)

	rows, err := f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	require.Len(t, rows[0].Planned, 1)
	planID := rows[0].Planned[0].ID

	res, err := f.svc.Promote(ctx, planID, "C1042", nil)
	require.NoError(t, err)
	assert.Equal(t, "1042", res.TCID)
	assert.True(t, res.LinkInserted)

	// The plan moved out of the grid and into coverage.
	rows, err = f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	assert.Empty(t, rows[0].Planned)
	require.Len(t, rows[0].Existing, 1)
	assert.Equal(t, "1042", rows[0].Existing[0].TCID)
}

func TestService_PromoteRejectsExceptionListedTCID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.AddPlans(ctx, "browser.search.with_ads", domain.VariantGlean,
		[]string{"DE"}, nil)
	require.NoError(t, err)
	rows, err := f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	require.Len(t, rows[0].Planned, 1)
	planID := rows[0].Planned[0].ID

	_, err = f.exceptions.Create(ctx, &domain.Exception{TCID: "2002"})
	require.NoError(t, err)

	// Normalization applies before the exception check, so the prefixed
	// form is rejected too.
	_, err = f.svc.Promote(ctx, planID, "C2002", nil)
	var invalid *domain.ValidationError
	require.ErrorAs(t, err, &invalid)

	// The plan survives the rejected promotion.
	rows, err = f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	assert.Len(t, rows[0].Planned, 1)
	assert.Empty(t, rows[0].Existing)
}

func TestService_PromoteRecordsPromotionAndPlanRemoval(t *testing.T) {
	f := setup(t)
	ctx := domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		Name: "bob", Role: domain.RoleAdmin,
	})

	_, err := f.svc.AddPlans(ctx, "browser.search.with_ads", domain.VariantGlean,
		[]string{"US"}, nil)
	require.NoError(t, err)
	rows, err := f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	planID := rows[0].Planned[0].ID

	_, err = f.svc.Promote(ctx, planID, "1042", nil)
	require.NoError(t, err)

	entries, _, err := f.history.List(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	actions := map[string]bool{}
	for _, e := range entries {
		actions[e.Action] = true
	}
	assert.True(t, actions["promote"])
	assert.True(t, actions["remove_plan"])
}

func TestService_PromoteOntoExistingLinkIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// The link the plan would create already exists, region only.
	_, err := f.coverage.AddLinks(ctx, "1042", nil,
		[]domain.MetricRef{{Name: "browser.search.with_ads", Variant: domain.VariantGlean}},
		[]string{"US"}, nil)
	require.NoError(t, err)

	_, err = f.svc.AddPlans(ctx, "browser.search.with_ads", domain.VariantGlean,
		[]string{"US"}, nil)
	require.NoError(t, err)
	rows, err := f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	planID := rows[0].Planned[0].ID

	res, err := f.svc.Promote(ctx, planID, "1042", nil)
	require.NoError(t, err)
	assert.False(t, res.LinkInserted)

	// Exactly one link row, the plan consumed either way.
	rows, err = f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	assert.Empty(t, rows[0].Planned)
	assert.Len(t, rows[0].Existing, 1)
}

func TestService_AddPlansDedupesHalfSpecifiedCombos(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	added, err := f.svc.AddPlans(ctx, "browser.search.with_ads", domain.VariantGlean,
		[]string{"US"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	// Same region-only combination again: skipped, not duplicated.
	added, err = f.svc.AddPlans(ctx, "browser.search.with_ads", domain.VariantGlean,
		[]string{"US"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	rows, err := f.svc.PageData(ctx, domain.VariantGlean)
	require.NoError(t, err)
	assert.Len(t, rows[0].Planned, 1)
}

func TestService_HistoryTrail(t *testing.T) {
	f := setup(t)
	ctx := domain.WithPrincipal(context.Background(), domain.ContextPrincipal{
		Name: "bob", Role: domain.RoleAdmin,
	})

	require.NoError(t, f.svc.SetPriority(ctx, "browser.search.with_ads", domain.VariantGlean, "P1"))
	require.NoError(t, f.svc.SaveNotes(ctx, "browser.search.with_ads", domain.VariantGlean, "check DE"))

	entries, total, err := f.history.List(ctx, domain.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, e := range entries {
		assert.Equal(t, "bob", e.Username)
		assert.Equal(t, "planning", e.TableName)
	}
}
