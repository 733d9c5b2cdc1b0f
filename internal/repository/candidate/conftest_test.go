package candidate

import (
	"context"
	"testing"

	"github.com/kailas-cloud/candidex/internal/db"
	domcand "github.com/kailas-cloud/candidex/internal/domain/candidate"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	docs       map[string]string
	jsonGetErr error
	multiErr   error
	multiCalls int
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	if m.jsonGetErr != nil {
		return nil, m.jsonGetErr
	}
	d, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return []byte(d), nil
}

func (m *mockStore) JSONGetMulti(_ context.Context, keys []string) ([][]byte, error) {
	m.multiCalls++
	if m.multiErr != nil {
		return nil, m.multiErr
	}
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if d, ok := m.docs[k]; ok {
			out[i] = []byte(d)
		}
	}
	return out, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{docs: map[string]string{}}
	return New(ms, "candidex:"), ms
}

const aliceDoc = `{
  "id": "alice",
  "skills": {"technical": ["Go", "PostgreSQL"], "soft": ["mentoring"], "tools": ["Docker"]},
  "experience": [{"job_title": "Backend Engineer", "company": "Acme", "duration": "Jan 2020 - Jan 2024",
                  "description": ["Built billing APIs"]}],
  "education": [{"degree": "BSc Computer Science", "institution": "SUST", "year": "2019", "gpa": "3.6"}],
  "projects": [{"title": "ledger", "description": "double entry ledger", "technologies": ["Go", "gRPC"]}]
}`

func ids(ps []domcand.Profile) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID()
	}
	return out
}
