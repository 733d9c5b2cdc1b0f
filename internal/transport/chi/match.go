package chi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/domain"
	dommatch "github.com/kailas-cloud/candidex/internal/domain/match"
	logpkg "github.com/kailas-cloud/candidex/internal/logger"
)

// MatchCandidates handles POST /jobs/{jobId}/match.
func (s *Server) MatchCandidates(w http.ResponseWriter, r *http.Request, jobID string) {
	var body MatchRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if n := len(body.CandidateIDs); s.maxCandidates > 0 && n > s.maxCandidates {
		s.handleDomainError(w, r, domain.Validationf("too many candidates: %d > %d", n, s.maxCandidates))
		return
	}

	wb := body.Weights
	if wb == nil {
		stored, err := s.weights.GetOrDefault(r.Context(), jobID)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		b := weightsToBody(stored)
		wb = &b
	}
	topK := len(body.CandidateIDs)
	if body.TopK != nil {
		topK = *body.TopK
	}

	req, err := dommatch.NewRequest(jobID, body.CandidateIDs, wb.toDomain(), topK,
		time.Duration(body.DeadlineMs)*time.Millisecond)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.matcher.Match(ctx, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := MatchResponse{JobID: jobID, Results: make([]MatchResultBody, 0, len(results))}
	for _, res := range results {
		resp.Results = append(resp.Results, matchResultToBody(res))
	}

	logpkg.Or(r.Context(), s.logger).Debug("Match served",
		zap.String("job_id", jobID),
		zap.Int("requested", len(body.CandidateIDs)),
		zap.Int("returned", len(results)),
		zap.Int("embedding_tokens", usage.TotalTokens()),
	)
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// GetWeights handles GET /jobs/{jobId}/weights.
func (s *Server) GetWeights(w http.ResponseWriter, r *http.Request, jobID string) {
	v, err := s.weights.GetOrDefault(r.Context(), jobID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, weightsToBody(v))
}

// PutWeights handles PUT /jobs/{jobId}/weights.
func (s *Server) PutWeights(w http.ResponseWriter, r *http.Request, jobID string) {
	var body WeightsBody
	if !decodeBody(w, r, &body) {
		return
	}
	v := body.toDomain()
	if _, err := v.Normalize(); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.weights.Put(r.Context(), jobID, v); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}
