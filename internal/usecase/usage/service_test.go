package usage

import (
	"context"
	"testing"
	"time"

	domusage "github.com/kailas-cloud/candidex/internal/domain/usage"
	embeddinguc "github.com/kailas-cloud/candidex/internal/usecase/embedding"
)

// --- Mock ---

type mockBudgetReader struct {
	snap embeddinguc.BudgetSnapshot
}

func (m *mockBudgetReader) Snapshot() embeddinguc.BudgetSnapshot { return m.snap }

var fixedNow = time.Date(2026, 5, 14, 15, 30, 0, 0, time.UTC)

func newService(br BudgetReader) *Service {
	return New(br, "openai").WithClock(func() time.Time { return fixedNow })
}

// --- Tests ---

func TestGetReport_DailyPeriod(t *testing.T) {
	br := &mockBudgetReader{snap: embeddinguc.BudgetSnapshot{
		Provider: "openai", DailyUsed: 3000, DailyLimit: 10000, MonthlyUsed: 50000, MonthlyLimit: 100000,
	}}
	r := newService(br).GetReport(context.Background(), domusage.PeriodDay)

	if r.Period() != domusage.PeriodDay {
		t.Errorf("expected period %q, got %q", domusage.PeriodDay, r.Period())
	}
	wantStart := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)
	if !r.Start().Equal(wantStart) || !r.End().Equal(wantStart.Add(24*time.Hour)) {
		t.Errorf("bounds: got %v..%v", r.Start(), r.End())
	}
	if r.Used() != 3000 || r.Limit() != 10000 || r.Remaining() != 7000 {
		t.Errorf("counters: used %d limit %d remaining %d", r.Used(), r.Limit(), r.Remaining())
	}
	if r.Exhausted() {
		t.Error("expected not exhausted")
	}
}

func TestGetReport_MonthlyPeriod(t *testing.T) {
	br := &mockBudgetReader{snap: embeddinguc.BudgetSnapshot{
		Provider: "openai", DailyUsed: 10, DailyLimit: 100, MonthlyUsed: 100000, MonthlyLimit: 100000,
	}}
	r := newService(br).GetReport(context.Background(), domusage.PeriodMonth)

	wantStart := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	if !r.Start().Equal(wantStart) || !r.End().Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("bounds: got %v..%v", r.Start(), r.End())
	}
	if r.Used() != 100000 || !r.Exhausted() || r.Remaining() != 0 {
		t.Errorf("counters: used %d exhausted %v remaining %d", r.Used(), r.Exhausted(), r.Remaining())
	}
}

func TestGetReport_NoBudget(t *testing.T) {
	r := newService(nil).GetReport(context.Background(), domusage.PeriodDay)

	if r.Provider() != "openai" {
		t.Errorf("provider: got %q", r.Provider())
	}
	if r.Limit() != 0 || r.Remaining() != -1 || r.Exhausted() {
		t.Errorf("unlimited report expected, got limit %d remaining %d", r.Limit(), r.Remaining())
	}
}
