package chi

import (
	"time"

	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
	"github.com/kailas-cloud/candidex/internal/domain/weights"
)

// ErrorCode is the machine-readable error kind in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest        ErrorCode = "bad_request"
	CodeValidationFailed  ErrorCode = "validation_failed"
	CodeInvalidWeights    ErrorCode = "invalid_weights"
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeNotFound          ErrorCode = "not_found"
	CodeIllegalTransition ErrorCode = "illegal_transition"
	CodeRateLimited       ErrorCode = "rate_limited"
	CodeQuotaExceeded     ErrorCode = "embedding_quota_exceeded"
	CodeProviderError     ErrorCode = "embedding_provider_error"
	CodeProviderTimeout   ErrorCode = "embedding_provider_timeout"
	CodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WeightsBody carries one weight per category.
type WeightsBody struct {
	Skills     float64 `json:"skills" validate:"gte=0"`
	Experience float64 `json:"experience" validate:"gte=0"`
	Projects   float64 `json:"projects" validate:"gte=0"`
	Education  float64 `json:"education" validate:"gte=0"`
}

func (b WeightsBody) toDomain() weights.Vector {
	return weights.Vector{
		Skills:     b.Skills,
		Experience: b.Experience,
		Projects:   b.Projects,
		Education:  b.Education,
	}
}

func weightsToBody(v weights.Vector) WeightsBody {
	return WeightsBody{Skills: v.Skills, Experience: v.Experience, Projects: v.Projects, Education: v.Education}
}

// MatchRequest is the body of POST /jobs/{jobId}/match.
// Omitted weights fall back to the job's stored weights; omitted top_k returns every match.
type MatchRequest struct {
	CandidateIDs []string     `json:"candidate_ids" validate:"required,min=1,dive,required"`
	Weights      *WeightsBody `json:"weights,omitempty"`
	TopK         *int         `json:"top_k,omitempty"`
	DeadlineMs   int          `json:"deadline_ms,omitempty" validate:"gte=0,lte=600000"`
}

// CategoryScoreBody explains one category of a match.
type CategoryScoreBody struct {
	Category     string   `json:"category"`
	Score        float64  `json:"score"`
	Semantic     float64  `json:"semantic"`
	Rule         float64  `json:"rule"`
	Similarity   float64  `json:"similarity"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
	Degraded     bool     `json:"degraded"`
}

// MatchResultBody is one ranked candidate.
type MatchResultBody struct {
	CandidateID string              `json:"candidate_id"`
	TotalScore  int                 `json:"total_score"`
	Degraded    bool                `json:"degraded"`
	Categories  []CategoryScoreBody `json:"categories"`
}

// MatchResponse is the body returned by POST /jobs/{jobId}/match.
type MatchResponse struct {
	JobID   string            `json:"job_id"`
	Results []MatchResultBody `json:"results"`
}

// ShortlistRequest is the body of POST /jobs/{jobId}/shortlist.
type ShortlistRequest struct {
	TargetCount int `json:"target_count" validate:"required,gte=1"`
}

// FinalistsRequest is the body of POST /jobs/{jobId}/finalists.
type FinalistsRequest struct {
	CandidateIDs []string `json:"candidate_ids" validate:"required,min=1,dive,required"`
}

// DecisionBody is a candidate's current stage.
type DecisionBody struct {
	CandidateID string     `json:"candidate_id"`
	Stage       string     `json:"stage"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// DecisionsResponse lists decisions for a job. Errors is set when some of the
// requested moves were refused.
type DecisionsResponse struct {
	JobID     string          `json:"job_id"`
	Decisions []DecisionBody  `json:"decisions"`
	Errors    []ErrorResponse `json:"errors,omitempty"`
}

// TransitionBody is one entry of a candidate's stage history.
type TransitionBody struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at"`
}

// HistoryResponse is the body returned by GET .../history.
type HistoryResponse struct {
	JobID       string           `json:"job_id"`
	CandidateID string           `json:"candidate_id"`
	Transitions []TransitionBody `json:"transitions"`
}

// UsageResponse is the body returned by GET /usage. Limit 0 and Remaining -1 mean unlimited.
type UsageResponse struct {
	Period    string    `json:"period"`
	Provider  string    `json:"provider"`
	Start     time.Time `json:"start"`
	ResetsAt  time.Time `json:"resets_at"`
	Used      int64     `json:"used_tokens"`
	Limit     int64     `json:"limit_tokens"`
	Remaining int64     `json:"remaining_tokens"`
	Exhausted bool      `json:"exhausted"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func matchResultToBody(r dommatch.Result) MatchResultBody {
	scores := r.Scores()
	cats := make([]CategoryScoreBody, 0, len(scores))
	for _, s := range scores {
		ev := s.Evidence()
		cats = append(cats, CategoryScoreBody{
			Category:     string(s.Category()),
			Score:        s.Value(),
			Semantic:     ev.Semantic,
			Rule:         ev.Rule,
			Similarity:   ev.Similarity,
			MatchedTerms: ev.MatchedTerms,
			Degraded:     ev.Degraded,
		})
	}
	return MatchResultBody{
		CandidateID: r.CandidateID(),
		TotalScore:  r.Total(),
		Degraded:    r.Degraded(),
		Categories:  cats,
	}
}

func decisionToBody(d domshort.Decision) DecisionBody {
	body := DecisionBody{CandidateID: d.CandidateID(), Stage: string(d.Stage())}
	if at := d.DecidedAt(); !at.IsZero() {
		body.DecidedAt = &at
	}
	return body
}

func decisionsToBody(ds []domshort.Decision) []DecisionBody {
	out := make([]DecisionBody, 0, len(ds))
	for _, d := range ds {
		out = append(out, decisionToBody(d))
	}
	return out
}
