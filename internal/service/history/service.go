// Package history exposes the edit history for review.
package history

import (
	"context"

	"covtrack/internal/domain"
)

// Service provides read access to the edit history.
type Service struct {
	repo domain.HistoryRepository
}

// NewService creates a new history Service.
func NewService(repo domain.HistoryRepository) *Service {
	return &Service{repo: repo}
}

// List returns history entries matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter domain.HistoryFilter) ([]domain.HistoryEntry, int64, error) {
	return s.repo.List(ctx, filter)
}
