// Package match scores and ranks candidates against a job opening.
package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/domain"
	domcand "github.com/kailas-cloud/candidex/internal/domain/candidate"
	domjob "github.com/kailas-cloud/candidex/internal/domain/job"
	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	"github.com/kailas-cloud/candidex/internal/domain/score"
	logpkg "github.com/kailas-cloud/candidex/internal/logger"
	"github.com/kailas-cloud/candidex/internal/metrics"
	"github.com/kailas-cloud/candidex/internal/usecase/embedding"
	"github.com/kailas-cloud/candidex/internal/usecase/scoring"
)

// Options tune a Service.
type Options struct {
	// DefaultDeadline applies when a request carries none. 0 = caller's context only.
	DefaultDeadline time.Duration
}

// Service runs match requests: fetch, embed, score, aggregate, rank.
type Service struct {
	jobs       JobReader
	candidates CandidateReader
	pool       BatchEmbedder
	jobEmb     domain.Embedder
	candEmb    domain.Embedder
	scorer     *scoring.Scorer
	opts       Options
	logger     *zap.Logger
}

// New creates a match service. jobEmb and candEmb embed the two sides of each
// comparison and usually differ only in their instruction prefix.
func New(
	jobs JobReader, candidates CandidateReader, pool BatchEmbedder,
	jobEmb, candEmb domain.Embedder, scorer *scoring.Scorer,
	opts Options, logger *zap.Logger,
) *Service {
	return &Service{
		jobs:       jobs,
		candidates: candidates,
		pool:       pool,
		jobEmb:     jobEmb,
		candEmb:    candEmb,
		scorer:     scorer,
		opts:       opts,
		logger:     logger,
	}
}

// Match ranks the requested candidates and returns at most req.TopK() results.
// Unknown candidates are skipped; an unknown job fails the request. When the
// deadline passes, unfinished embeddings fall back to rule-only scoring.
func (s *Service) Match(ctx context.Context, req dommatch.Request) (results []dommatch.Result, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.MatchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}()

	if req.TopK() <= 0 {
		return []dommatch.Result{}, nil
	}

	deadline := req.Deadline()
	if deadline == 0 {
		deadline = s.opts.DefaultDeadline
	}
	embedCtx := ctx
	if deadline > 0 {
		var cancel context.CancelFunc
		embedCtx, cancel = context.WithDeadline(ctx, start.Add(deadline))
		defer cancel()
	}

	log := logpkg.Or(ctx, s.logger).With(zap.String("job_id", req.JobID()))

	job, err := s.jobs.Get(ctx, req.JobID())
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	profiles, missing, err := s.candidates.GetMany(ctx, req.CandidateIDs())
	if err != nil {
		return nil, fmt.Errorf("get candidates: %w", err)
	}
	if len(missing) > 0 {
		metrics.MatchCandidatesExcluded.WithLabelValues("not_found").Add(float64(len(missing)))
		log.Warn("Candidates not found, excluded from match", zap.Strings("candidate_ids", missing))
	}

	scored, err := s.score(embedCtx, job, profiles, req)
	if err != nil {
		return nil, err
	}
	ranked := Rank(scored, req.TopK())

	log.Debug("Match completed",
		zap.Int("requested", len(req.CandidateIDs())),
		zap.Int("scored", len(scored)),
		zap.Int("returned", len(ranked)),
		zap.Duration("duration", time.Since(start)),
	)
	return ranked, nil
}

// score embeds job and candidate texts in one pass and builds a result per profile.
func (s *Service) score(
	ctx context.Context, job domjob.Requirement, profiles []domcand.Profile, req dommatch.Request,
) ([]dommatch.Result, error) {
	if len(profiles) == 0 {
		return []dommatch.Result{}, nil
	}

	jobTexts := scoring.JobTexts(job)
	candTexts := make([]string, 0, len(profiles)*len(score.Categories))
	for _, p := range profiles {
		t := scoring.CandidateTexts(p)
		candTexts = append(candTexts, t[:]...)
	}

	slots := s.pool.EmbedGroups(ctx,
		embedding.Group{Embedder: s.jobEmb, Texts: jobTexts[:]},
		embedding.Group{Embedder: s.candEmb, Texts: candTexts},
	)
	jobSlots, candSlots := slots[0], slots[1]

	out := make([]dommatch.Result, 0, len(profiles))
	for i, p := range profiles {
		var pairs [4]scoring.Pair
		for c := range score.Categories {
			pairs[c] = scoring.Pair{Job: jobSlots[c], Candidate: candSlots[i*len(score.Categories)+c]}
		}
		cats := s.scorer.Score(job, p, pairs)
		for _, cs := range cats {
			if cs.Evidence().Degraded {
				metrics.MatchCategoryDegraded.WithLabelValues(string(cs.Category())).Inc()
			}
		}

		total, err := scoring.Aggregate(cats, req.Weights())
		if err != nil {
			// Weights were validated with the request.
			return nil, fmt.Errorf("aggregate %s: %w", p.ID(), err)
		}
		out = append(out, dommatch.NewResult(p.ID(), cats, total))
	}
	metrics.MatchCandidatesScored.Add(float64(len(out)))

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		logpkg.Or(ctx, s.logger).Warn("Match deadline reached, unfinished categories scored by rules",
			zap.String("job_id", job.ID()))
	}
	return out, nil
}
