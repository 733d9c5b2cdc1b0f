package shortlist

import (
	"context"

	domjob "github.com/kailas-cloud/candidex/internal/domain/job"
	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
	"github.com/kailas-cloud/candidex/internal/domain/weights"
)

// JobReader reads job openings.
type JobReader interface {
	Get(ctx context.Context, id string) (domjob.Requirement, error)
}

// WeightsReader returns the recruiter weights for a job, or equal weights when none were set.
type WeightsReader interface {
	GetOrDefault(ctx context.Context, jobID string) (weights.Vector, error)
}

// Matcher ranks candidates for a job.
type Matcher interface {
	Match(ctx context.Context, req dommatch.Request) ([]dommatch.Result, error)
}

// TransitionStore is the append-only stage log.
type TransitionStore interface {
	RecordTransitions(ctx context.Context, ts []domshort.Transition) error
	LatestStages(ctx context.Context, jobID string) (map[string]domshort.Decision, error)
	History(ctx context.Context, jobID, candidateID string) ([]domshort.Transition, error)
}
