package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/domain"
	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	"github.com/kailas-cloud/candidex/internal/domain/score"
	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
	domusage "github.com/kailas-cloud/candidex/internal/domain/usage"
	"github.com/kailas-cloud/candidex/internal/domain/weights"
	healthuc "github.com/kailas-cloud/candidex/internal/usecase/health"
)

// --- Fakes ---

type fakeMatcher struct {
	results []dommatch.Result
	err     error
	tokens  int
	got     dommatch.Request
	calls   int
}

func (f *fakeMatcher) Match(ctx context.Context, req dommatch.Request) ([]dommatch.Result, error) {
	f.calls++
	f.got = req
	if f.tokens > 0 {
		domain.UsageFromContext(ctx).AddTokens(f.tokens)
	}
	return f.results, f.err
}

type fakeWeights struct {
	stored  map[string]weights.Vector
	getErr  error
	putErr  error
	getCall int
}

func newFakeWeights() *fakeWeights {
	return &fakeWeights{stored: map[string]weights.Vector{}}
}

func (f *fakeWeights) Put(_ context.Context, jobID string, w weights.Vector) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.stored[jobID] = w
	return nil
}

func (f *fakeWeights) GetOrDefault(_ context.Context, jobID string) (weights.Vector, error) {
	f.getCall++
	if f.getErr != nil {
		return weights.Vector{}, f.getErr
	}
	if w, ok := f.stored[jobID]; ok {
		return w, nil
	}
	return weights.Equal(), nil
}

type fakeShortlister struct {
	decisions []domshort.Decision
	history   []domshort.Transition
	err       error
	target    int
	moved     []string
}

func (f *fakeShortlister) RunShortlist(_ context.Context, _ string, target int) ([]domshort.Decision, error) {
	f.target = target
	return f.decisions, f.err
}

func (f *fakeShortlister) MarkFinalists(_ context.Context, _ string, ids []string) ([]domshort.Decision, error) {
	f.moved = ids
	return f.decisions, f.err
}

func (f *fakeShortlister) Reject(_ context.Context, _ string, id string) (domshort.Decision, error) {
	f.moved = []string{id}
	if f.err != nil {
		return domshort.Decision{}, f.err
	}
	return f.decisions[0], nil
}

func (f *fakeShortlister) Decisions(_ context.Context, _ string) ([]domshort.Decision, error) {
	return f.decisions, f.err
}

func (f *fakeShortlister) History(_ context.Context, _, _ string) ([]domshort.Transition, error) {
	return f.history, f.err
}

type fakeUsage struct {
	used, limit int64
	got         domusage.Period
}

func (f *fakeUsage) GetReport(_ context.Context, p domusage.Period) domusage.Report {
	f.got = p
	start := time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)
	return domusage.NewReport(p, "openai", start, start.Add(24*time.Hour), f.used, f.limit)
}

type fakeHealth struct {
	report healthuc.Report
}

func (f fakeHealth) Check(_ context.Context) healthuc.Report { return f.report }

// --- Harness ---

type harness struct {
	matcher   *fakeMatcher
	weights   *fakeWeights
	shortlist *fakeShortlister
	usage     *fakeUsage
	health    *fakeHealth
	server    *Server
	handler   http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		matcher:   &fakeMatcher{},
		weights:   newFakeWeights(),
		shortlist: &fakeShortlister{},
		usage:     &fakeUsage{},
		health:    &fakeHealth{report: healthuc.Report{Status: healthuc.Healthy}},
	}
	h.server = NewServer(h.matcher, h.weights, h.shortlist, h.usage, h.health, zap.NewNop())
	h.handler = HandlerWithOptions(h.server, ChiServerOptions{})
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func result(id string, total int, skills float64) dommatch.Result {
	var scores [4]score.CategoryScore
	for i, c := range score.Categories {
		v := float64(total)
		if c == score.Skills {
			v = skills
		}
		scores[i] = score.Must(c, v, score.Evidence{Semantic: v, Rule: v, Similarity: v / 100})
	}
	return dommatch.NewResult(id, scores, total)
}
