package match

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/domain"
	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	"github.com/kailas-cloud/candidex/internal/domain/score"
	"github.com/kailas-cloud/candidex/internal/domain/weights"
	"github.com/kailas-cloud/candidex/internal/usecase/embedding"
)

func mustRequest(t *testing.T, ids []string, w weights.Vector, topK int, deadline time.Duration) dommatch.Request {
	t.Helper()
	req, err := dommatch.NewRequest("job-1", ids, w, topK, deadline)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestMatch_RanksBestFirst(t *testing.T) {
	h := newHarness(t, nil, Options{})
	req := mustRequest(t, []string{"weak", "mid", "strong"}, weights.Equal(), 10, 0)

	got, err := h.svc.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	want := []string{"strong", "mid", "weak"}
	for i, r := range got {
		if r.CandidateID() != want[i] {
			t.Errorf("position %d: expected %s, got %s (total %d)", i, want[i], r.CandidateID(), r.Total())
		}
		if r.Total() < 0 || r.Total() > 100 {
			t.Errorf("total %d out of range", r.Total())
		}
	}
	for i := 1; i < len(got); i++ {
		if Less(got[i], got[i-1]) {
			t.Errorf("results %d and %d out of order", i-1, i)
		}
	}
	if got[0].Total() != 100 {
		t.Errorf("expected a perfect score for the strong candidate, got %d", got[0].Total())
	}
	if got[0].Degraded() {
		t.Error("expected no degraded categories")
	}
}

func TestMatch_SingleEmbeddingPass(t *testing.T) {
	h := newHarness(t, nil, Options{})
	req := mustRequest(t, []string{"strong", "mid"}, weights.Equal(), 2, 0)

	if _, err := h.svc.Match(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Job skills text is embedded once even though both candidates compare against it.
	if n := h.emb.count("query: Go, PostgreSQL, Kubernetes, gRPC"); n != 1 {
		t.Errorf("expected job skills embedded once, got %d", n)
	}
	// 4 job texts + 4 candidate texts each, minus the experience and education
	// texts the two candidates share.
	if n := h.emb.total(); n != 10 {
		t.Errorf("expected 10 provider calls, got %d", n)
	}
}

func TestMatch_TopK(t *testing.T) {
	tests := []struct {
		name string
		topK int
		want int
	}{
		{"zero", 0, 0},
		{"negative", -3, 0},
		{"one", 1, 1},
		{"exact", 3, 3},
		{"beyond", 50, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil, Options{})
			req := mustRequest(t, []string{"strong", "mid", "weak"}, weights.Equal(), tt.topK, 0)

			got, err := h.svc.Match(context.Background(), req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || len(got) != tt.want {
				t.Fatalf("expected %d results, got %v", tt.want, got)
			}
			if tt.topK <= 0 && h.jobs.calls != 0 {
				t.Error("expected no store access for an empty result")
			}
		})
	}
}

func TestMatch_MissingCandidateExcluded(t *testing.T) {
	h := newHarness(t, nil, Options{})
	req := mustRequest(t, []string{"ghost", "mid"}, weights.Equal(), 5, 0)

	got, err := h.svc.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].CandidateID() != "mid" {
		t.Fatalf("expected only mid, got %v", got)
	}
}

func TestMatch_AllCandidatesMissing(t *testing.T) {
	h := newHarness(t, nil, Options{})
	req := mustRequest(t, []string{"ghost"}, weights.Equal(), 5, 0)

	got, err := h.svc.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if h.emb.total() != 0 {
		t.Error("expected no embedding calls")
	}
}

func TestMatch_MissingJobFatal(t *testing.T) {
	h := newHarness(t, nil, Options{})
	req, _ := dommatch.NewRequest("job-404", []string{"mid"}, weights.Equal(), 5, 0)

	_, err := h.svc.Match(context.Background(), req)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if h.cands.calls != 0 || h.emb.total() != 0 {
		t.Error("expected no candidate fetch or embedding after a missing job")
	}
}

func TestMatch_CandidateStoreError(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.cands.err = errors.New("connection reset")
	req := mustRequest(t, []string{"mid"}, weights.Equal(), 5, 0)

	if _, err := h.svc.Match(context.Background(), req); err == nil {
		t.Fatal("expected error")
	}
}

func TestMatch_LargeCandidateSetNotCapped(t *testing.T) {
	h := newHarness(t, nil, Options{})
	ids := []string{"strong", "mid", "weak"}
	for i := range 600 {
		ids = append(ids, fmt.Sprintf("ghost-%d", i))
	}
	req := mustRequest(t, ids, weights.Equal(), len(ids), 0)

	got, err := h.svc.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 || got[0].CandidateID() != "strong" {
		t.Fatalf("expected the 3 stored candidates ranked, got %v", got)
	}
}

func TestMatch_DeadlineDegradesToRules(t *testing.T) {
	emb := &fakeEmbedder{fn: func(ctx context.Context, _ string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	h := newHarness(t, emb, Options{DefaultDeadline: time.Minute})
	req := mustRequest(t, []string{"strong", "weak"}, weights.Equal(), 5, 30*time.Millisecond)

	start := time.Now()
	got, err := h.svc.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatal("request deadline not applied")
	}
	if len(got) != 2 || got[0].CandidateID() != "strong" {
		t.Fatalf("unexpected results: %v", got)
	}
	for _, cs := range got[0].Scores() {
		if !cs.Evidence().Degraded {
			t.Errorf("%s: expected degraded", cs.Category())
		}
		if cs.Value() != cs.Evidence().Rule {
			t.Errorf("%s: expected rule-only score %v, got %v", cs.Category(), cs.Evidence().Rule, cs.Value())
		}
	}
	if got[0].Total() != 100 {
		t.Errorf("expected rule-only total 100, got %d", got[0].Total())
	}
}

func TestMatch_RateLimitedSkillsFallsBackToRule(t *testing.T) {
	const skillsText = "passage: Go, PostgreSQL, Kubernetes, gRPC"
	base := &fakeEmbedder{fn: func(_ context.Context, text string) ([]float32, error) {
		if text == skillsText {
			return nil, &domain.ProviderError{StatusCode: 429, Message: "slow down"}
		}
		return nil, nil
	}}
	retrying := embedding.NewRetryingEmbedder(base, embedding.RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		Factor:     2,
	}, zap.NewNop())

	h := newHarness(t, retrying, Options{})
	req := mustRequest(t, []string{"strong"}, weights.Equal(), 1, 0)

	got, err := h.svc.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := base.count(skillsText); n != 4 {
		t.Errorf("expected 1 call + 3 retries, got %d", n)
	}

	skills := got[0].Score(score.Skills)
	if !skills.Evidence().Degraded {
		t.Fatal("expected skills degraded")
	}
	if skills.Value() != skills.Evidence().Rule || skills.Value() != 100 {
		t.Errorf("expected skills = rule 100, got %v", skills.Value())
	}
	for _, c := range []score.Category{score.Experience, score.Projects, score.Education} {
		if got[0].Score(c).Evidence().Degraded {
			t.Errorf("%s: expected a semantic signal", c)
		}
	}
}

func TestMatch_WeightsShiftRanking(t *testing.T) {
	h := newHarness(t, nil, Options{})
	onlySkills := weights.Vector{Skills: 1}
	req := mustRequest(t, []string{"mid", "weak"}, onlySkills, 2, 0)

	got, err := h.svc.Match(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range got {
		want := int(score.Clamp(r.Score(score.Skills).Value() + 0.5))
		if r.Total() != want {
			t.Errorf("%s: expected total to equal skills score %d, got %d", r.CandidateID(), want, r.Total())
		}
	}
}
