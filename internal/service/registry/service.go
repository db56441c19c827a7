// Package registry maintains the supported engine list and the
// TCID exception list.
package registry

import (
	"context"
	"strings"

	"covtrack/internal/domain"
	"covtrack/internal/service/histutil"
)

// Service provides reference-list operations.
type Service struct {
	engines    domain.EngineRepository
	exceptions domain.ExceptionRepository
	history    domain.HistoryRepository
}

// NewService creates a new registry Service.
func NewService(engines domain.EngineRepository, exceptions domain.ExceptionRepository,
	history domain.HistoryRepository) *Service {
	return &Service{engines: engines, exceptions: exceptions, history: history}
}

// AddEngine registers a search engine name.
func (s *Service) AddEngine(ctx context.Context, name string) error {
	if err := s.engines.Add(ctx, name); err != nil {
		return err
	}
	histutil.Log(ctx, s.history, "create", "supported_engines", strings.ToLower(strings.TrimSpace(name)), nil)
	return nil
}

// Engines lists the supported search engines.
func (s *Service) Engines(ctx context.Context) ([]domain.SupportedEngine, error) {
	return s.engines.List(ctx)
}

// RemoveEngine deletes an engine from the reference list.
func (s *Service) RemoveEngine(ctx context.Context, name string) error {
	if err := s.engines.Remove(ctx, name); err != nil {
		return err
	}
	histutil.Log(ctx, s.history, "delete", "supported_engines", name, nil)
	return nil
}

// AddException excludes a TCID from coverage accounting. The id is
// normalized first so "C1042" and "1042" exclude the same test case.
func (s *Service) AddException(ctx context.Context, tcid string, reason *string) (*domain.Exception, error) {
	tcid = domain.NormalizeTCID(strings.TrimSpace(tcid))
	if tcid == "" {
		return nil, domain.ErrValidation("tc_id is required")
	}
	e, err := s.exceptions.Create(ctx, &domain.Exception{TCID: tcid, Reason: reason})
	if err != nil {
		return nil, err
	}
	histutil.Log(ctx, s.history, "create", "exceptions", tcid, reason)
	return e, nil
}

// Exceptions lists the live exceptions.
func (s *Service) Exceptions(ctx context.Context) ([]domain.Exception, error) {
	return s.exceptions.List(ctx, false)
}

// RemoveException soft-deletes an exception, returning the TCID to normal
// accounting.
func (s *Service) RemoveException(ctx context.Context, tcid string) error {
	tcid = domain.NormalizeTCID(strings.TrimSpace(tcid))
	if err := s.exceptions.SetDeleted(ctx, tcid, true); err != nil {
		return err
	}
	histutil.Log(ctx, s.history, "soft_delete", "exceptions", tcid, nil)
	return nil
}
