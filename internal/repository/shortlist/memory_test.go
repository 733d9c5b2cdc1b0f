package shortlist

import (
	"context"
	"testing"
	"time"

	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
)

func TestMemoryStore_LatestAndHistory(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)

	err := s.RecordTransitions(ctx, []domshort.Transition{
		{JobID: "j1", CandidateID: "a", From: domshort.Applicant, To: domshort.Shortlisted, At: t0},
		{JobID: "j1", CandidateID: "b", From: domshort.Applicant, To: domshort.Rejected, At: t0},
		{JobID: "j2", CandidateID: "a", From: domshort.Applicant, To: domshort.Rejected, At: t0},
	})
	if err != nil {
		t.Fatalf("RecordTransitions: %v", err)
	}
	t1 := t0.Add(time.Hour)
	if err := s.RecordTransition(ctx, domshort.Transition{
		JobID: "j1", CandidateID: "a", From: domshort.Shortlisted, To: domshort.Finalist, At: t1,
	}); err != nil {
		t.Fatalf("RecordTransition: %v", err)
	}

	latest, err := s.LatestStages(ctx, "j1")
	if err != nil {
		t.Fatalf("LatestStages: %v", err)
	}
	if len(latest) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(latest))
	}
	if d := latest["a"]; d.Stage() != domshort.Finalist || !d.DecidedAt().Equal(t1) {
		t.Errorf("expected a FINALIST at t1, got %s at %v", d.Stage(), d.DecidedAt())
	}
	if latest["b"].Stage() != domshort.Rejected {
		t.Errorf("expected b REJECTED, got %s", latest["b"].Stage())
	}

	hist, err := s.History(ctx, "j1", "a")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 2 || hist[0].To != domshort.Shortlisted || hist[1].To != domshort.Finalist {
		t.Errorf("unexpected history: %+v", hist)
	}
}

func TestMemoryStore_EmptyJob(t *testing.T) {
	s := NewMemoryStore()

	latest, err := s.LatestStages(context.Background(), "none")
	if err != nil || len(latest) != 0 {
		t.Fatalf("expected empty map, got %v %v", latest, err)
	}
	hist, err := s.History(context.Background(), "none", "a")
	if err != nil || hist != nil {
		t.Fatalf("expected nil history, got %v %v", hist, err)
	}
}
