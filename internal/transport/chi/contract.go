package chi

import (
	"context"

	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
	domusage "github.com/kailas-cloud/candidex/internal/domain/usage"
	"github.com/kailas-cloud/candidex/internal/domain/weights"
	healthuc "github.com/kailas-cloud/candidex/internal/usecase/health"
)

// Matcher ranks candidates for a job.
type Matcher interface {
	Match(ctx context.Context, req dommatch.Request) ([]dommatch.Result, error)
}

// WeightsStore keeps recruiter weights per job.
type WeightsStore interface {
	Put(ctx context.Context, jobID string, w weights.Vector) error
	GetOrDefault(ctx context.Context, jobID string) (weights.Vector, error)
}

// Shortlister drives the per-job shortlist workflow.
type Shortlister interface {
	RunShortlist(ctx context.Context, jobID string, targetCount int) ([]domshort.Decision, error)
	MarkFinalists(ctx context.Context, jobID string, candidateIDs []string) ([]domshort.Decision, error)
	Reject(ctx context.Context, jobID, candidateID string) (domshort.Decision, error)
	Decisions(ctx context.Context, jobID string) ([]domshort.Decision, error)
	History(ctx context.Context, jobID, candidateID string) ([]domshort.Transition, error)
}

// UsageReporter reports embedding token usage.
type UsageReporter interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
