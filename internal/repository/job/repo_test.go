package job

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/candidex/internal/db"
	"github.com/kailas-cloud/candidex/internal/domain"
)

type mockStore struct {
	docs map[string]string
	err  error
	keys []string
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	m.keys = append(m.keys, key)
	if m.err != nil {
		return nil, m.err
	}
	d, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(d), nil
}

const backendJob = `{
  "jobDescription": "Own the payments backend",
  "requirements": [{"category": "must", "description": "4+ years building services"}],
  "responsibilities": [{"category": "core", "description": "Design APIs"}],
  "skills": [{"category": "tech", "description": "Go, PostgreSQL"}],
  "minExperienceYears": 4,
  "educationConstraint": {"degree": "Computer Science", "institute": "", "minGpa": 3.0},
  "applicants": ["a", "b"],
  "applications": [{"candidateId": "c"}, {"candidateId": "a"}]
}`

func TestGet_Found(t *testing.T) {
	ms := &mockStore{docs: map[string]string{"candidex:job:j1": backendJob}}
	repo := New(ms, "candidex:")

	j, err := repo.Get(context.Background(), "j1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if j.ID() != "j1" || j.MinExperienceYears() != 4 {
		t.Errorf("unexpected job: id=%q min=%v", j.ID(), j.MinExperienceYears())
	}
	if j.Education().MinGPA != 3.0 {
		t.Errorf("expected min gpa 3.0, got %v", j.Education().MinGPA)
	}
	if got := j.Applicants(); len(got) != 3 || got[2] != "c" {
		t.Errorf("expected merged deduped applicants [a b c], got %v", got)
	}
	if got := j.SkillKeywords(); len(got) != 2 {
		t.Errorf("expected 2 skill keywords, got %v", got)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo := New(&mockStore{docs: map[string]string{}}, "candidex:")

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGet_StoreError(t *testing.T) {
	repo := New(&mockStore{err: errors.New("boom")}, "candidex:")

	_, err := repo.Get(context.Background(), "j1")
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestGet_InvalidDocument(t *testing.T) {
	ms := &mockStore{docs: map[string]string{"candidex:job:j1": `{"minExperienceYears": -2}`}}
	repo := New(ms, "candidex:")

	if _, err := repo.Get(context.Background(), "j1"); err == nil {
		t.Fatal("expected error for negative experience")
	}
}
