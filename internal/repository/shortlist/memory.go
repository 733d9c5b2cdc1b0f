// Package shortlist persists the append-only shortlist transition log.
package shortlist

import (
	"context"
	"sync"

	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
)

// MemoryStore keeps transitions in process. Used when no Postgres DSN is configured.
type MemoryStore struct {
	mu  sync.RWMutex
	log map[string][]domshort.Transition // by job
}

// NewMemoryStore creates an empty in-memory transition log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{log: make(map[string][]domshort.Transition)}
}

// RecordTransition appends a single transition.
func (m *MemoryStore) RecordTransition(ctx context.Context, t domshort.Transition) error {
	return m.RecordTransitions(ctx, []domshort.Transition{t})
}

// RecordTransitions appends transitions in order, all at once.
func (m *MemoryStore) RecordTransitions(_ context.Context, ts []domshort.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range ts {
		m.log[t.JobID] = append(m.log[t.JobID], t)
	}
	return nil
}

// LatestStages returns the current stage of every candidate with at least one transition.
func (m *MemoryStore) LatestStages(_ context.Context, jobID string) (map[string]domshort.Decision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domshort.Decision)
	for _, t := range m.log[jobID] {
		out[t.CandidateID] = domshort.NewDecision(t.CandidateID, t.To, t.At)
	}
	return out, nil
}

// History returns a candidate's transitions oldest first.
func (m *MemoryStore) History(_ context.Context, jobID, candidateID string) ([]domshort.Transition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domshort.Transition
	for _, t := range m.log[jobID] {
		if t.CandidateID == candidateID {
			out = append(out, t)
		}
	}
	return out, nil
}
