package chi

import (
	"net/http"

	"github.com/kailas-cloud/candidex/internal/domain"
	domshort "github.com/kailas-cloud/candidex/internal/domain/shortlist"
)

// RunShortlist handles POST /jobs/{jobId}/shortlist.
func (s *Server) RunShortlist(w http.ResponseWriter, r *http.Request, jobID string) {
	var body ShortlistRequest
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	decisions, err := s.shortlist.RunShortlist(ctx, jobID, body.TargetCount)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, DecisionsResponse{JobID: jobID, Decisions: decisionsToBody(decisions)})
}

// ListShortlist handles GET /jobs/{jobId}/shortlist.
func (s *Server) ListShortlist(w http.ResponseWriter, r *http.Request, jobID string, params ListShortlistParams) {
	var stage domshort.Stage
	if params.Stage != nil {
		stage = domshort.Stage(*params.Stage)
		if !stage.Valid() {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "unknown stage "+*params.Stage)
			return
		}
	}

	decisions, err := s.shortlist.Decisions(r.Context(), jobID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if stage != "" {
		kept := make([]domshort.Decision, 0, len(decisions))
		for _, d := range decisions {
			if d.Stage() == stage {
				kept = append(kept, d)
			}
		}
		decisions = kept
	}

	writeJSON(w, http.StatusOK, DecisionsResponse{JobID: jobID, Decisions: decisionsToBody(decisions)})
}

// GetHistory handles GET /jobs/{jobId}/shortlist/{candidateId}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request, jobID, candidateID string) {
	hist, err := s.shortlist.History(r.Context(), jobID, candidateID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := HistoryResponse{JobID: jobID, CandidateID: candidateID, Transitions: make([]TransitionBody, 0, len(hist))}
	for _, t := range hist {
		resp.Transitions = append(resp.Transitions, TransitionBody{From: string(t.From), To: string(t.To), At: t.At})
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkFinalists handles POST /jobs/{jobId}/finalists. Moves that were applied are
// returned alongside the refused ones; the request fails only when nothing moved.
func (s *Server) MarkFinalists(w http.ResponseWriter, r *http.Request, jobID string) {
	var body FinalistsRequest
	if !decodeBody(w, r, &body) {
		return
	}

	decisions, err := s.shortlist.MarkFinalists(r.Context(), jobID, body.CandidateIDs)
	if err != nil && len(decisions) == 0 {
		s.handleDomainError(w, r, err)
		return
	}

	resp := DecisionsResponse{JobID: jobID, Decisions: decisionsToBody(decisions)}
	if err != nil {
		for _, e := range splitJoined(err) {
			resp.Errors = append(resp.Errors, itemError(e))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// RejectCandidate handles POST /jobs/{jobId}/shortlist/{candidateId}/reject.
func (s *Server) RejectCandidate(w http.ResponseWriter, r *http.Request, jobID, candidateID string) {
	d, err := s.shortlist.Reject(r.Context(), jobID, candidateID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decisionToBody(d))
}
