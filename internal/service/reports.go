package service

import (
	"context"
	"time"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/report"
)

// FinancialSummary aggregates sales and expenses between start and end, both
// inclusive.
func (s *Service) FinancialSummary(_ context.Context, start, end time.Time) (domain.FinancialSummary, error) {
	if start.IsZero() || end.IsZero() {
		return domain.FinancialSummary{}, invalid("start and end are required")
	}
	if start.After(end) {
		return domain.FinancialSummary{}, invalid("start must not be after end")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return report.Summarize(s.transactions, s.expenses, s.products, start.UTC(), end.UTC()), nil
}
