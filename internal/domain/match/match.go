// Package match holds match requests and per-candidate results.
package match

import (
	"strings"
	"time"

	"github.com/kailas-cloud/candidex/internal/domain"
	"github.com/kailas-cloud/candidex/internal/domain/score"
	"github.com/kailas-cloud/candidex/internal/domain/weights"
)

// Result is a single candidate's scored match. It is never mutated after construction.
type Result struct {
	candidateID string
	scores      [4]score.CategoryScore
	total       int
}

// NewResult creates a Result. scores must be in score.Categories order.
func NewResult(candidateID string, scores [4]score.CategoryScore, total int) Result {
	return Result{candidateID: candidateID, scores: scores, total: total}
}

// CandidateID returns the candidate identifier.
func (r Result) CandidateID() string { return r.candidateID }

// Total returns the aggregated score in [0,100].
func (r Result) Total() int { return r.total }

// Scores returns the per-category scores in score.Categories order.
func (r Result) Scores() [4]score.CategoryScore { return r.scores }

// Score returns the score for one category.
func (r Result) Score(c score.Category) score.CategoryScore {
	if i := c.Index(); i >= 0 {
		return r.scores[i]
	}
	return score.CategoryScore{}
}

// Degraded reports whether any category fell back to rule-only scoring.
func (r Result) Degraded() bool {
	for _, s := range r.scores {
		if s.Evidence().Degraded {
			return true
		}
	}
	return false
}

// Request is a validated match request.
type Request struct {
	jobID        string
	candidateIDs []string
	weights      weights.Vector
	topK         int
	deadline     time.Duration
}

// NewRequest validates and creates a Request. Duplicate candidate IDs are collapsed.
// A zero deadline means the caller's context governs.
func NewRequest(jobID string, candidateIDs []string, w weights.Vector, topK int, deadline time.Duration) (Request, error) {
	if strings.TrimSpace(jobID) == "" {
		return Request{}, domain.Validationf("job id is required")
	}
	if len(candidateIDs) == 0 {
		return Request{}, domain.Validationf("at least one candidate id is required")
	}
	seen := make(map[string]bool, len(candidateIDs))
	ids := make([]string, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if strings.TrimSpace(id) == "" {
			return Request{}, domain.Validationf("candidate id must not be blank")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if _, err := w.Normalize(); err != nil {
		return Request{}, err
	}
	if deadline < 0 {
		return Request{}, domain.Validationf("deadline must be non-negative")
	}
	return Request{jobID: jobID, candidateIDs: ids, weights: w, topK: topK, deadline: deadline}, nil
}

// JobID returns the job identifier.
func (r Request) JobID() string { return r.jobID }

// CandidateIDs returns the deduplicated candidate identifiers.
func (r Request) CandidateIDs() []string { return r.candidateIDs }

// Weights returns the submitted weights.
func (r Request) Weights() weights.Vector { return r.weights }

// TopK returns the truncation size. Values <= 0 yield an empty result.
func (r Request) TopK() int { return r.topK }

// Deadline returns the request deadline.
func (r Request) Deadline() time.Duration { return r.deadline }
