// Package chi is the HTTP API: routing, request binding, and error mapping.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/candidex/internal/domain"
	domusage "github.com/kailas-cloud/candidex/internal/domain/usage"
	logpkg "github.com/kailas-cloud/candidex/internal/logger"
	healthuc "github.com/kailas-cloud/candidex/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// sentinelStatus maps a domain sentinel to its HTTP status and code.
// Order matters: ErrInvalidWeight wraps ErrValidation, and a 429 ProviderError
// matches both ErrRateLimited and ErrProviderError.
type sentinelStatus struct {
	sentinel error
	status   int
	code     ErrorCode
}

var sentinelStatuses = []sentinelStatus{
	{domain.ErrInvalidWeight, http.StatusBadRequest, CodeInvalidWeights},
	{domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrEmptyInput, http.StatusBadRequest, CodeValidationFailed},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrRateLimited, http.StatusTooManyRequests, CodeRateLimited},
	{domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, CodeQuotaExceeded},
	{domain.ErrProviderTimeout, http.StatusGatewayTimeout, CodeProviderTimeout},
	{domain.ErrProviderError, http.StatusBadGateway, CodeProviderError},
}

// Server implements ServerInterface.
type Server struct {
	matcher       Matcher
	weights       WeightsStore
	shortlist     Shortlister
	usage         UsageReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler

	maxCandidates int
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	matcher Matcher,
	weights WeightsStore,
	shortlist Shortlister,
	usage UsageReporter,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		matcher:   matcher,
		weights:   weights,
		shortlist: shortlist,
		usage:     usage,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{illegalTransitionHandler}
	for _, ss := range sentinelStatuses {
		s.errorHandlers = append(s.errorHandlers, sentinelHandler(ss.sentinel, ss.status, ss.code))
	}
	return s
}

// WithMaxCandidates caps candidate IDs per match request. 0 = unlimited.
func (s *Server) WithMaxCandidates(n int) *Server {
	s.maxCandidates = n
	return s
}

// GetUsage handles GET /usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams) {
	period := domusage.PeriodDay
	if params.Period != nil {
		period = domusage.Period(*params.Period)
		if !period.Valid() {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "period must be \"day\" or \"month\"")
			return
		}
	}

	rep := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, UsageResponse{
		Period:    string(rep.Period()),
		Provider:  rep.Provider(),
		Start:     rep.Start(),
		ResetsAt:  rep.End(),
		Used:      rep.Used(),
		Limit:     rep.Limit(),
		Remaining: rep.Remaining(),
		Exhausted: rep.Exhausted(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens()))
	}
	if n := usage.Failed(); n > 0 {
		w.Header().Set("X-Embedding-Unavailable", strconv.Itoa(n))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Validation and transition errors describe the caller's own input and are passed through.
func safeDomainMessage(err error) string {
	var ite *domain.IllegalTransitionError
	if errors.As(err, &ite) {
		return ite.Error()
	}
	if errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	for _, ss := range sentinelStatuses {
		if errors.Is(err, ss.sentinel) {
			return ss.sentinel.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// illegalTransitionHandler answers 409 and names the refused move.
func illegalTransitionHandler(w http.ResponseWriter, err error, msg string) bool {
	var ite *domain.IllegalTransitionError
	if !errors.As(err, &ite) {
		return false
	}
	writeJSON(w, http.StatusConflict, ErrorResponse{
		Code:    CodeIllegalTransition,
		Message: msg,
		Details: map[string]string{
			"candidate_id": ite.CandidateID,
			"from":         ite.From,
			"to":           ite.To,
		},
	})
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.Or(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// itemError describes one refused item of a partially applied request.
func itemError(err error) ErrorResponse {
	resp := ErrorResponse{Code: CodeInternalError, Message: safeDomainMessage(err)}
	var ite *domain.IllegalTransitionError
	if errors.As(err, &ite) {
		resp.Code = CodeIllegalTransition
		resp.Details = map[string]string{"candidate_id": ite.CandidateID, "from": ite.From, "to": ite.To}
		return resp
	}
	for _, ss := range sentinelStatuses {
		if errors.Is(err, ss.sentinel) {
			resp.Code = ss.code
			resp.Message = err.Error()
			break
		}
	}
	return resp
}

// splitJoined flattens an errors.Join result.
func splitJoined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
