package match

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/domain"
	domcand "github.com/kailas-cloud/candidex/internal/domain/candidate"
	domjob "github.com/kailas-cloud/candidex/internal/domain/job"
	"github.com/kailas-cloud/candidex/internal/usecase/embedding"
	"github.com/kailas-cloud/candidex/internal/usecase/scoring"
)

var fixedNow = func() time.Time { return time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC) }

// --- Mocks ---

type mockJobs struct {
	jobs  map[string]domjob.Requirement
	calls int
}

func (m *mockJobs) Get(_ context.Context, id string) (domjob.Requirement, error) {
	m.calls++
	j, ok := m.jobs[id]
	if !ok {
		return domjob.Requirement{}, domain.ErrNotFound
	}
	return j, nil
}

type mockCandidates struct {
	profiles map[string]domcand.Profile
	err      error
	calls    int
}

func (m *mockCandidates) GetMany(_ context.Context, ids []string) ([]domcand.Profile, []string, error) {
	m.calls++
	if m.err != nil {
		return nil, nil, m.err
	}
	var found []domcand.Profile
	var missing []string
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			found = append(found, p)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}

// fakeEmbedder returns a constant vector unless fn overrides the outcome for a text.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(ctx context.Context, text string) ([]float32, error)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[text]++
	f.mu.Unlock()

	vec := []float32{1, 0, 0}
	if f.fn != nil {
		v, err := f.fn(ctx, text)
		if err != nil {
			return domain.EmbeddingResult{}, err
		}
		if v != nil {
			vec = v
		}
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: 1}, nil
}

func (f *fakeEmbedder) count(text string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[text]
}

func (f *fakeEmbedder) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// --- Fixtures ---

func testJob(t *testing.T) domjob.Requirement {
	t.Helper()
	j, err := domjob.New(domjob.Spec{
		ID:                 "job-1",
		Description:        "Backend engineer for the payments platform",
		Responsibilities:   []domjob.Item{{Description: "Own services end to end"}},
		Requirements:       []domjob.Item{{Description: "Build distributed systems"}},
		Skills:             []domjob.Item{{Category: "core", Description: "Go, PostgreSQL, Kubernetes, gRPC"}},
		MinExperienceYears: 4,
		Education:          domjob.EducationConstraint{Degree: "Computer Science", MinGPA: 3.0},
		Applicants:         []string{"strong", "mid", "weak"},
	})
	if err != nil {
		t.Fatalf("job.New: %v", err)
	}
	return j
}

func mustProfile(t *testing.T, id string, skills []string, duration, degree, gpa string, techs []string) domcand.Profile {
	t.Helper()
	var exp []domcand.Experience
	if duration != "" {
		exp = []domcand.Experience{{JobTitle: "Engineer", Company: "Acme", Duration: duration}}
	}
	var edu []domcand.Education
	if degree != "" {
		edu = []domcand.Education{{Degree: degree, Institution: "SUST", GPA: gpa}}
	}
	var proj []domcand.Project
	if len(techs) > 0 {
		proj = []domcand.Project{{Title: "platform", Technologies: techs}}
	}
	p, err := domcand.New(id, domcand.Skills{Technical: skills}, exp, edu, proj)
	if err != nil {
		t.Fatalf("candidate.New: %v", err)
	}
	return p
}

func testProfiles(t *testing.T) map[string]domcand.Profile {
	return map[string]domcand.Profile{
		"strong": mustProfile(t, "strong", []string{"Go", "PostgreSQL", "Kubernetes", "gRPC"},
			"Jan 2018 - Jan 2024", "BSc Computer Science", "3.8", []string{"Go", "Kubernetes", "gRPC", "PostgreSQL"}),
		"mid": mustProfile(t, "mid", []string{"Go", "PostgreSQL"},
			"Jan 2020 - Jan 2022", "BSc Computer Science", "2.5", []string{"Go"}),
		"weak": mustProfile(t, "weak", []string{"Python"}, "", "", "", nil),
	}
}

type harness struct {
	svc   *Service
	jobs  *mockJobs
	cands *mockCandidates
	emb   *fakeEmbedder
}

func newHarness(t *testing.T, inner domain.Embedder, opts Options) *harness {
	t.Helper()
	j := testJob(t)
	h := &harness{
		jobs:  &mockJobs{jobs: map[string]domjob.Requirement{j.ID(): j}},
		cands: &mockCandidates{profiles: testProfiles(t)},
	}
	if inner == nil {
		h.emb = &fakeEmbedder{}
		inner = h.emb
	}
	pool := embedding.NewPool(inner, 4, zap.NewNop())
	h.svc = New(h.jobs, h.cands, pool,
		domain.NewInstructionEmbedder(inner, "query: "),
		domain.NewInstructionEmbedder(inner, "passage: "),
		scoring.NewScorer(fixedNow), opts, zap.NewNop())
	return h
}
