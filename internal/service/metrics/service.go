// Package metrics manages Glean and Legacy metric definitions.
package metrics

import (
	"context"
	"strings"

	"covtrack/internal/domain"
	"covtrack/internal/service/histutil"
)

// Service provides metric management operations.
type Service struct {
	repo    domain.MetricRepository
	history domain.HistoryRepository
}

// NewService creates a new metrics Service.
func NewService(repo domain.MetricRepository, history domain.HistoryRepository) *Service {
	return &Service{repo: repo, history: history}
}

// Add validates and persists a new metric.
func (s *Service) Add(ctx context.Context, m *domain.Metric) (*domain.Metric, error) {
	if m == nil {
		return nil, domain.ErrValidation("metric is required")
	}
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return nil, domain.ErrValidation("metric name is required")
	}
	if !m.Variant.Valid() {
		return nil, domain.ErrValidation("unknown metric variant %q", m.Variant)
	}

	created, err := s.repo.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	histutil.Log(ctx, s.history, "create", metricHistoryTable(m.Variant), m.Name, nil)
	return created, nil
}

// Update applies a patch to an existing metric.
func (s *Service) Update(ctx context.Context, name string, v domain.Variant, patch domain.MetricPatch) (*domain.Metric, error) {
	updated, err := s.repo.Update(ctx, name, v, patch)
	if err != nil {
		return nil, err
	}
	histutil.Log(ctx, s.history, "update", metricHistoryTable(v), name, nil)
	return updated, nil
}

// Get returns one metric.
func (s *Service) Get(ctx context.Context, name string, v domain.Variant) (*domain.Metric, error) {
	return s.repo.Get(ctx, name, v)
}

// List returns the live metrics of one variant.
func (s *Service) List(ctx context.Context, v domain.Variant) ([]domain.Metric, error) {
	return s.repo.List(ctx, v, false)
}

// Categories returns the distinct categories across both variants.
func (s *Service) Categories(ctx context.Context) ([]domain.CategoryOption, error) {
	return s.repo.Categories(ctx)
}

func metricHistoryTable(v domain.Variant) string {
	if v == domain.VariantLegacy {
		return "legacy_metrics"
	}
	return "glean_metrics"
}
