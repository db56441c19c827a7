// Package planning manages per-metric priorities, notes, and planned
// coverage combinations.
package planning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"covtrack/internal/domain"
	"covtrack/internal/service/histutil"
)

// Service provides planning operations.
type Service struct {
	repo       domain.PlanningRepository
	metrics    domain.MetricRepository
	exceptions domain.ExceptionRepository
	history    domain.HistoryRepository
}

// NewService creates a new planning Service.
func NewService(repo domain.PlanningRepository, metrics domain.MetricRepository,
	exceptions domain.ExceptionRepository, history domain.HistoryRepository) *Service {
	return &Service{repo: repo, metrics: metrics, exceptions: exceptions, history: history}
}

// PageData returns the planning grid for one variant.
func (s *Service) PageData(ctx context.Context, v domain.Variant) ([]domain.PlanningRow, error) {
	return s.repo.Rows(ctx, v)
}

// SetPriority records the priority of one metric.
func (s *Service) SetPriority(ctx context.Context, name string, v domain.Variant, priority string) error {
	if err := s.requireMetric(ctx, name, v); err != nil {
		return err
	}
	if err := s.repo.SetPriority(ctx, name, v, strings.TrimSpace(priority)); err != nil {
		return err
	}
	histutil.Log(ctx, s.history, "set_priority", "planning", name, &priority)
	return nil
}

// SaveNotes records free-text notes for one metric.
func (s *Service) SaveNotes(ctx context.Context, name string, v domain.Variant, notes string) error {
	if err := s.requireMetric(ctx, name, v); err != nil {
		return err
	}
	if err := s.repo.SaveNotes(ctx, name, v, notes); err != nil {
		return err
	}
	histutil.Log(ctx, s.history, "save_notes", "planning", name, nil)
	return nil
}

// AddPlans records every region/engine combination as a separate plan.
// Empty lists contribute a nil dimension. Combinations that already exist
// are skipped.
func (s *Service) AddPlans(ctx context.Context, name string, v domain.Variant, regions, engines []string) (added int, err error) {
	if err := s.requireMetric(ctx, name, v); err != nil {
		return 0, err
	}

	regionPtrs := dimension(regions)
	enginePtrs := dimension(engines)
	for _, region := range regionPtrs {
		for _, engine := range enginePtrs {
			if region == nil && engine == nil {
				continue
			}
			_, err := s.repo.AddPlan(ctx, &domain.PlanningEntry{
				MetricName: name,
				Variant:    v,
				Region:     region,
				Engine:     engine,
			})
			switch {
			case err == nil:
				added++
			case isConflict(err):
				// already planned
			default:
				return added, err
			}
		}
	}
	if added == 0 && len(regions) == 0 && len(engines) == 0 {
		return 0, domain.ErrValidation("a plan needs a region or an engine")
	}

	histutil.Log(ctx, s.history, "add_plan", "planning", name,
		strp(fmt.Sprintf("added=%d", added)))
	return added, nil
}

// RemovePlan deletes one planned combination.
func (s *Service) RemovePlan(ctx context.Context, id int64) error {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.RemovePlan(ctx, id); err != nil {
		return err
	}
	histutil.Log(ctx, s.history, "remove_plan", "planning", plan.MetricName, nil)
	return nil
}

// Promote converts one planned combination into real coverage under the
// given TCID and consumes the plan. An exception-listed TCID is rejected
// before anything moves.
func (s *Service) Promote(ctx context.Context, planID int64, tcid string, title *string) (*domain.PromoteResult, error) {
	tcid = domain.NormalizeTCID(strings.TrimSpace(tcid))
	if tcid == "" {
		return nil, domain.ErrValidation("tc_id is required")
	}
	excluded, err := s.exceptions.ExistsLive(ctx, tcid)
	if err != nil {
		return nil, err
	}
	if excluded {
		return nil, domain.ErrValidation("TCID %s is on the exception list", tcid)
	}

	res, err := s.repo.Promote(ctx, planID, tcid, title)
	if err != nil {
		return nil, err
	}
	histutil.Log(ctx, s.history, "promote", "coverage_links", tcid,
		strp(fmt.Sprintf("plan=%d inserted=%t", planID, res.LinkInserted)))
	histutil.Log(ctx, s.history, "remove_plan", "planning", fmt.Sprintf("%d", planID),
		strp(fmt.Sprintf("consumed by promotion to TCID %s", tcid)))
	return res, nil
}

func (s *Service) requireMetric(ctx context.Context, name string, v domain.Variant) error {
	if !v.Valid() {
		return domain.ErrValidation("unknown metric variant %q", v)
	}
	known, err := s.metrics.FilterExisting(ctx, v, []string{name})
	if err != nil {
		return err
	}
	if !known[name] {
		return domain.ErrNotFound("metric %q not found", name)
	}
	return nil
}

// dimension maps a value list to pointer values, nil standing in for an
// absent dimension.
func dimension(vals []string) []*string {
	if len(vals) == 0 {
		return []*string{nil}
	}
	out := make([]*string, 0, len(vals))
	for _, v := range vals {
		v := strings.TrimSpace(v)
		if v == "" {
			out = append(out, nil)
			continue
		}
		out = append(out, &v)
	}
	return out
}

func isConflict(err error) bool {
	var conflict *domain.ConflictError
	return errors.As(err, &conflict)
}

func strp(s string) *string { return &s }
