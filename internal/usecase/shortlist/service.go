// Package shortlist runs the per-job applicant stage machine on top of match rankings.
package shortlist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/domain"
	domjob "github.com/kailas-cloud/candidex/internal/domain/job"
	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
	logpkg "github.com/kailas-cloud/candidex/internal/logger"
	"github.com/kailas-cloud/candidex/internal/metrics"
)

// Service applies shortlist runs and manual decisions. Calls for the same job
// are serialized; different jobs proceed independently.
type Service struct {
	jobs    JobReader
	weights WeightsReader
	matcher Matcher
	store   TransitionStore
	locks   *jobLocks
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a shortlist service.
func New(jobs JobReader, w WeightsReader, matcher Matcher, store TransitionStore, logger *zap.Logger) *Service {
	return &Service{
		jobs:    jobs,
		weights: w,
		matcher: matcher,
		store:   store,
		locks:   newJobLocks(),
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock overrides the decision timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// RunShortlist ranks the job's applicants and moves the best targetCount to
// SHORTLISTED and every other applicant to REJECTED. Finalists keep their stage,
// take no part in ranking and count toward targetCount.
func (s *Service) RunShortlist(ctx context.Context, jobID string, targetCount int) ([]domshort.Decision, error) {
	release, err := s.locks.acquire(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("wait for job %s: %w", jobID, err)
	}
	defer release()

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	applicants := job.Applicants()
	if len(applicants) == 0 {
		return nil, domain.Validationf("job %s has no applicants", jobID)
	}
	if targetCount < 1 || targetCount > len(applicants) {
		return nil, domain.Validationf("target count must be between 1 and %d, got %d", len(applicants), targetCount)
	}

	current, err := s.store.LatestStages(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load stages: %w", err)
	}

	var finalists, open []string
	for _, id := range applicants {
		if stageOf(current, id).Terminal() {
			finalists = append(finalists, id)
		} else {
			open = append(open, id)
		}
	}

	ranked, err := s.rank(ctx, jobID, open)
	if err != nil {
		return nil, err
	}

	slots := max(0, targetCount-len(finalists))
	now := s.now().UTC()
	var transitions []domshort.Transition
	decisions := make([]domshort.Decision, 0, len(applicants))
	for _, id := range finalists {
		decisions = append(decisions, decisionOf(current, id))
	}
	for i, id := range ranked {
		to := domshort.Rejected
		if i < slots {
			to = domshort.Shortlisted
		}
		from := stageOf(current, id)
		if from == to {
			decisions = append(decisions, decisionOf(current, id))
			continue
		}
		if err := domshort.Check(id, from, to); err != nil {
			// Unreachable for non-terminal stages; kept so the log never records an illegal move.
			metrics.ShortlistIllegalTotal.Inc()
			return nil, err
		}
		transitions = append(transitions, domshort.Transition{JobID: jobID, CandidateID: id, From: from, To: to, At: now})
		decisions = append(decisions, domshort.NewDecision(id, to, now))
	}

	if err := s.record(ctx, transitions); err != nil {
		return nil, err
	}

	logpkg.Or(ctx, s.logger).Info("Shortlist run applied",
		zap.String("job_id", jobID),
		zap.Int("target", targetCount),
		zap.Int("applicants", len(applicants)),
		zap.Int("finalists", len(finalists)),
		zap.Int("transitions", len(transitions)),
	)
	return decisions, nil
}

// rank orders candidate IDs best first. Applicants without a stored profile are
// appended last in application order, so every open applicant gets a decision.
func (s *Service) rank(ctx context.Context, jobID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	w, err := s.weights.GetOrDefault(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load weights: %w", err)
	}
	req, err := dommatch.NewRequest(jobID, ids, w, len(ids), 0)
	if err != nil {
		return nil, err
	}
	results, err := s.matcher.Match(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("rank applicants: %w", err)
	}

	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		out = append(out, r.CandidateID())
		seen[r.CandidateID()] = true
	}
	for _, id := range ids {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// MarkFinalists moves shortlisted candidates to FINALIST. Each candidate is
// judged alone: illegal moves are reported in the joined error while legal ones
// are still recorded.
func (s *Service) MarkFinalists(ctx context.Context, jobID string, candidateIDs []string) ([]domshort.Decision, error) {
	return s.moveEach(ctx, jobID, candidateIDs, domshort.Finalist)
}

// Reject moves a candidate to REJECTED from any non-terminal stage. Rejecting a
// rejected candidate records nothing.
func (s *Service) Reject(ctx context.Context, jobID, candidateID string) (domshort.Decision, error) {
	ds, err := s.moveEach(ctx, jobID, []string{candidateID}, domshort.Rejected)
	if err != nil {
		return domshort.Decision{}, err
	}
	return ds[0], nil
}

func (s *Service) moveEach(
	ctx context.Context, jobID string, candidateIDs []string, to domshort.Stage,
) ([]domshort.Decision, error) {
	if len(candidateIDs) == 0 {
		return nil, domain.Validationf("at least one candidate id is required")
	}
	release, err := s.locks.acquire(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("wait for job %s: %w", jobID, err)
	}
	defer release()

	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	current, err := s.store.LatestStages(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load stages: %w", err)
	}

	now := s.now().UTC()
	var (
		transitions []domshort.Transition
		decisions   []domshort.Decision
		errs        []error
	)
	for _, id := range candidateIDs {
		if !applied(job, id) {
			errs = append(errs, fmt.Errorf("candidate %s did not apply to job %s: %w", id, jobID, domain.ErrNotFound))
			continue
		}
		from := stageOf(current, id)
		if from == to {
			decisions = append(decisions, decisionOf(current, id))
			continue
		}
		if err := domshort.Check(id, from, to); err != nil {
			metrics.ShortlistIllegalTotal.Inc()
			errs = append(errs, err)
			continue
		}
		transitions = append(transitions, domshort.Transition{JobID: jobID, CandidateID: id, From: from, To: to, At: now})
		decisions = append(decisions, domshort.NewDecision(id, to, now))
		current[id] = domshort.NewDecision(id, to, now)
	}

	if err := s.record(ctx, transitions); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		logpkg.Or(ctx, s.logger).Warn("Shortlist transitions refused",
			zap.String("job_id", jobID),
			zap.String("to", string(to)),
			zap.Int("refused", len(errs)),
			zap.Int("applied", len(transitions)),
		)
	}
	return decisions, errors.Join(errs...)
}

// Decisions returns the current stage of every applicant, in application order.
// Applicants never touched by a run are reported as APPLICANT.
func (s *Service) Decisions(ctx context.Context, jobID string) ([]domshort.Decision, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	current, err := s.store.LatestStages(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load stages: %w", err)
	}
	out := make([]domshort.Decision, 0, len(job.Applicants()))
	for _, id := range job.Applicants() {
		out = append(out, decisionOf(current, id))
	}
	return out, nil
}

// History returns the candidate's transitions for the job, oldest first.
func (s *Service) History(ctx context.Context, jobID, candidateID string) ([]domshort.Transition, error) {
	hist, err := s.store.History(ctx, jobID, candidateID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return hist, nil
}

func (s *Service) record(ctx context.Context, ts []domshort.Transition) error {
	if len(ts) == 0 {
		return nil
	}
	if err := s.store.RecordTransitions(ctx, ts); err != nil {
		return fmt.Errorf("record transitions: %w", err)
	}
	for _, t := range ts {
		metrics.ShortlistTransitionsTotal.WithLabelValues(string(t.From), string(t.To)).Inc()
	}
	return nil
}

func stageOf(current map[string]domshort.Decision, id string) domshort.Stage {
	if d, ok := current[id]; ok {
		return d.Stage()
	}
	return domshort.Applicant
}

func decisionOf(current map[string]domshort.Decision, id string) domshort.Decision {
	if d, ok := current[id]; ok {
		return d
	}
	return domshort.NewDecision(id, domshort.Applicant, time.Time{})
}

func applied(job domjob.Requirement, id string) bool {
	return slices.Contains(job.Applicants(), id)
}
