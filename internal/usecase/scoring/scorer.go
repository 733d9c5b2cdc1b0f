// Package scoring turns embeddings and profile heuristics into category and total scores.
package scoring

import (
	"errors"
	"time"

	"github.com/kailas-cloud/candidex/internal/domain"
	"github.com/kailas-cloud/candidex/internal/domain/candidate"
	"github.com/kailas-cloud/candidex/internal/domain/job"
	"github.com/kailas-cloud/candidex/internal/domain/score"
	"github.com/kailas-cloud/candidex/internal/domain/similarity"
)

// Blend shares. Without a semantic signal the rule signal carries the full weight.
const (
	SemanticShare = 0.7
	RuleShare     = 0.3
)

// Pair holds the job-side and candidate-side embedding for one category.
type Pair struct {
	Job       domain.EmbeddingSlot
	Candidate domain.EmbeddingSlot
}

// JobTexts returns the job text per category in score.Categories order.
func JobTexts(j job.Requirement) [4]string {
	return [4]string{j.SkillsText(), j.ExperienceText(), j.ProjectsText(), j.EducationText()}
}

// CandidateTexts returns the candidate text per category in score.Categories order.
func CandidateTexts(p candidate.Profile) [4]string {
	return [4]string{p.SkillsText(), p.ExperienceText(), p.ProjectsText(), p.EducationText()}
}

// Scorer produces the four category scores of a candidate.
type Scorer struct {
	rules Rules
}

// NewScorer creates a Scorer. A nil clock uses time.Now.
func NewScorer(now func() time.Time) *Scorer {
	return &Scorer{rules: NewRules(now)}
}

// Score evaluates all categories. pairs must be in score.Categories order.
func (s *Scorer) Score(j job.Requirement, p candidate.Profile, pairs [4]Pair) [4]score.CategoryScore {
	var out [4]score.CategoryScore
	for i, c := range score.Categories {
		out[i] = Combine(c, s.rules.For(c, j, p), pairs[i])
	}
	return out
}

// RuleOnly scores every category from rules alone, flagged degraded.
// Used when no embedding could be obtained for the candidate.
func (s *Scorer) RuleOnly(j job.Requirement, p candidate.Profile) [4]score.CategoryScore {
	var out [4]score.CategoryScore
	for i, c := range score.Categories {
		rule := s.rules.For(c, j, p)
		out[i] = score.Must(c, score.Clamp(rule.Value), score.Evidence{
			MatchedTerms: rule.Matched,
			Rule:         rule.Value,
			Degraded:     true,
		})
	}
	return out
}

// Combine blends the semantic and rule signals of one category.
//
//   - both embeddings available: 0.7*semantic + 0.3*rule
//   - candidate has no text for the category: semantic counts as 0
//   - job has no text for the category: rule only
//   - any other embedding failure: rule only, flagged degraded
func Combine(c score.Category, rule RuleSignal, pair Pair) score.CategoryScore {
	ev := score.Evidence{MatchedTerms: rule.Matched, Rule: rule.Value}

	switch {
	case errors.Is(pair.Job.Err, domain.ErrEmptyInput):
		return score.Must(c, score.Clamp(rule.Value), ev)
	case errors.Is(pair.Candidate.Err, domain.ErrEmptyInput) && pair.Job.Available():
		return score.Must(c, score.Clamp(RuleShare*rule.Value), ev)
	case !pair.Job.Available() || !pair.Candidate.Available():
		ev.Degraded = true
		return score.Must(c, score.Clamp(rule.Value), ev)
	}

	sim, err := similarity.Cosine(pair.Candidate.Result.Embedding, pair.Job.Result.Embedding)
	if err != nil {
		ev.Degraded = true
		return score.Must(c, score.Clamp(rule.Value), ev)
	}
	ev.Similarity = sim
	ev.Semantic = 100 * sim
	return score.Must(c, score.Clamp(SemanticShare*ev.Semantic+RuleShare*rule.Value), ev)
}
