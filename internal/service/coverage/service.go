// Package coverage records which test cases exercise which metrics.
package coverage

import (
	"context"
	"fmt"
	"strings"

	"covtrack/internal/domain"
	"covtrack/internal/service/histutil"
)

// Service provides coverage recording and reporting operations.
type Service struct {
	repo       domain.CoverageRepository
	metrics    domain.MetricRepository
	exceptions domain.ExceptionRepository
	history    domain.HistoryRepository
}

// NewService creates a new coverage Service.
func NewService(repo domain.CoverageRepository, metrics domain.MetricRepository,
	exceptions domain.ExceptionRepository, history domain.HistoryRepository) *Service {
	return &Service{repo: repo, metrics: metrics, exceptions: exceptions, history: history}
}

// AddEntryInput is one coverage assertion: a test case, the metrics it
// exercises, and the regions/engines it was run under.
type AddEntryInput struct {
	TCID    string
	Title   *string
	Variant domain.Variant
	Metrics []string
	Regions []string
	Engines []string
}

// AddEntryResult reports what an AddEntry call changed.
type AddEntryResult struct {
	TCID           string
	Inserted       int64
	Duplicates     int64
	SkippedMetrics []string
	Message        string
}

// AddEntry normalizes the TCID, drops unknown metrics, and records the
// cartesian product of the surviving metrics with the given regions and
// engines. A TCID on the exception list is rejected outright.
func (s *Service) AddEntry(ctx context.Context, in AddEntryInput) (*AddEntryResult, error) {
	tcid := domain.NormalizeTCID(strings.TrimSpace(in.TCID))
	if tcid == "" {
		return nil, domain.ErrValidation("tc_id is required")
	}
	if !in.Variant.Valid() {
		return nil, domain.ErrValidation("unknown metric variant %q", in.Variant)
	}

	excluded, err := s.exceptions.ExistsLive(ctx, tcid)
	if err != nil {
		return nil, err
	}
	if excluded {
		return nil, domain.ErrValidation("TCID %s is on the exception list", tcid)
	}

	names := dedupeTrimmed(in.Metrics)
	if len(names) == 0 {
		return nil, domain.ErrValidation("at least one metric is required")
	}
	known, err := s.metrics.FilterExisting(ctx, in.Variant, names)
	if err != nil {
		return nil, err
	}

	var refs []domain.MetricRef
	var skipped []string
	for _, name := range names {
		if known[name] {
			refs = append(refs, domain.MetricRef{Name: name, Variant: in.Variant})
		} else {
			skipped = append(skipped, name)
		}
	}
	if len(refs) == 0 {
		return nil, domain.ErrValidation("none of the given metrics exist")
	}

	res, err := s.repo.AddLinks(ctx, tcid, in.Title, refs, in.Regions, in.Engines)
	if err != nil {
		return nil, err
	}

	histutil.Log(ctx, s.history, "add_coverage", "coverage_links", tcid,
		strp(fmt.Sprintf("inserted=%d duplicates=%d skipped=%d", res.Inserted, res.Duplicates, len(skipped))))

	out := &AddEntryResult{
		TCID:           tcid,
		Inserted:       res.Inserted,
		Duplicates:     res.Duplicates,
		SkippedMetrics: skipped,
	}
	out.Message = buildMessage(out)
	return out, nil
}

func buildMessage(r *AddEntryResult) string {
	msg := fmt.Sprintf("recorded %d new link(s) for TCID %s", r.Inserted, r.TCID)
	if r.Duplicates > 0 {
		msg += fmt.Sprintf(", %d already present", r.Duplicates)
	}
	if len(r.SkippedMetrics) > 0 {
		msg += fmt.Sprintf(", skipped unknown metrics: %s", strings.Join(r.SkippedMetrics, ", "))
	}
	return msg
}

// Summaries returns the per-metric coverage aggregates for one variant.
func (s *Service) Summaries(ctx context.Context, v domain.Variant) ([]domain.MetricCoverage, error) {
	return s.repo.MetricSummaries(ctx, v)
}

// Details returns the coverage detail rows for one metric.
func (s *Service) Details(ctx context.Context, name string, v domain.Variant) ([]domain.LinkDetail, error) {
	return s.repo.DetailsForMetric(ctx, name, v)
}

// ReportData returns every live metric of a variant with its covered TCID
// count.
func (s *Service) ReportData(ctx context.Context, v domain.Variant) ([]domain.ReportRow, error) {
	return s.repo.ReportRows(ctx, v)
}

// Stats returns the dashboard headline numbers.
func (s *Service) Stats(ctx context.Context) (*domain.CoverageStats, error) {
	return s.repo.Stats(ctx)
}

// MetricStatus returns the definition and coverage of one metric.
func (s *Service) MetricStatus(ctx context.Context, name string, v domain.Variant) (*domain.MetricStatus, error) {
	m, err := s.metrics.Get(ctx, name, v)
	if err != nil {
		return nil, err
	}
	details, err := s.repo.DetailsForMetric(ctx, name, v)
	if err != nil {
		return nil, err
	}
	mc := domain.MetricCoverage{
		MetricName: name,
		Variant:    v,
		Category:   m.Category,
		Details:    details,
	}
	regions := map[string]struct{}{}
	engines := map[string]struct{}{}
	tcids := map[string]struct{}{}
	for _, d := range details {
		if d.Region != nil {
			regions[*d.Region] = struct{}{}
		}
		if d.Engine != nil {
			engines[*d.Engine] = struct{}{}
		}
		tcids[d.TCID] = struct{}{}
	}
	mc.RegionCount = len(regions)
	mc.EngineCount = len(engines)
	mc.TCIDCount = len(tcids)
	return &domain.MetricStatus{Metric: *m, Coverage: mc}, nil
}

// Suggestions returns TCID autocomplete candidates.
func (s *Service) Suggestions(ctx context.Context, query string, limit int) ([]domain.Suggestion, error) {
	return s.repo.Suggest(ctx, query, limit)
}

// SoftDelete hides one record; Restore brings it back.
func (s *Service) SoftDelete(ctx context.Context, target domain.SoftDeleteTarget) error {
	return s.setDeleted(ctx, target, true)
}

// Restore reverses a soft delete.
func (s *Service) Restore(ctx context.Context, target domain.SoftDeleteTarget) error {
	return s.setDeleted(ctx, target, false)
}

func (s *Service) setDeleted(ctx context.Context, target domain.SoftDeleteTarget, deleted bool) error {
	var (
		err   error
		table string
	)
	switch target.Kind {
	case domain.DeleteGleanMetric:
		table = "glean_metrics"
		err = s.metrics.SetDeleted(ctx, target.Key, domain.VariantGlean, deleted)
	case domain.DeleteLegacyMetric:
		table = "legacy_metrics"
		err = s.metrics.SetDeleted(ctx, target.Key, domain.VariantLegacy, deleted)
	case domain.DeleteCoverageRoot:
		table = "coverage"
		err = s.repo.SetRootDeleted(ctx, domain.NormalizeTCID(target.Key), deleted)
	case domain.DeleteCoverageLink:
		table = "coverage_links"
		var id int64
		if _, perr := fmt.Sscanf(target.Key, "%d", &id); perr != nil {
			return domain.ErrValidation("invalid link id %q", target.Key)
		}
		err = s.repo.SetLinkDeleted(ctx, id, deleted)
	case domain.DeleteException:
		table = "exceptions"
		err = s.exceptions.SetDeleted(ctx, domain.NormalizeTCID(target.Key), deleted)
	default:
		return domain.ErrValidation("unknown delete target %q", target.Kind)
	}
	if err != nil {
		return err
	}

	action := "soft_delete"
	if !deleted {
		action = "restore"
	}
	histutil.Log(ctx, s.history, action, table, target.Key, nil)
	return nil
}

func dedupeTrimmed(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func strp(s string) *string { return &s }
