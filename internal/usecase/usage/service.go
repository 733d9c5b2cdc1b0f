// Package usage reports embedding token consumption per budget period.
package usage

import (
	"context"
	"time"

	domusage "github.com/kailas-cloud/candidex/internal/domain/usage"
)

// Service handles usage reporting.
type Service struct {
	br       BudgetReader
	provider string
	now      func() time.Time
}

// New creates a Service. br can be nil when no budget is configured; reports
// then show zero usage and no limit.
func New(br BudgetReader, provider string) *Service {
	return &Service{br: br, provider: provider, now: time.Now}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetReport builds a usage report for the given period. Unknown periods fall back to the day.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := s.now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var used, limit int64
	provider := s.provider
	if s.br != nil {
		snap := s.br.Snapshot()
		provider = snap.Provider
		if period == domusage.PeriodMonth {
			used, limit = snap.MonthlyUsed, snap.MonthlyLimit
		} else {
			used, limit = snap.DailyUsed, snap.DailyLimit
		}
	}

	if period == domusage.PeriodMonth {
		return domusage.NewReport(period, provider, monthStart, monthStart.AddDate(0, 1, 0), used, limit)
	}
	return domusage.NewReport(domusage.PeriodDay, provider, dayStart, dayStart.Add(24*time.Hour), used, limit)
}
