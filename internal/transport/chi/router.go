package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface is the set of HTTP operations the API exposes.
type ServerInterface interface {
	// (POST /jobs/{jobId}/match)
	MatchCandidates(w http.ResponseWriter, r *http.Request, jobID string)
	// (GET /jobs/{jobId}/weights)
	GetWeights(w http.ResponseWriter, r *http.Request, jobID string)
	// (PUT /jobs/{jobId}/weights)
	PutWeights(w http.ResponseWriter, r *http.Request, jobID string)
	// (POST /jobs/{jobId}/shortlist)
	RunShortlist(w http.ResponseWriter, r *http.Request, jobID string)
	// (GET /jobs/{jobId}/shortlist)
	ListShortlist(w http.ResponseWriter, r *http.Request, jobID string, params ListShortlistParams)
	// (GET /jobs/{jobId}/shortlist/{candidateId}/history)
	GetHistory(w http.ResponseWriter, r *http.Request, jobID, candidateID string)
	// (POST /jobs/{jobId}/shortlist/{candidateId}/reject)
	RejectCandidate(w http.ResponseWriter, r *http.Request, jobID, candidateID string)
	// (POST /jobs/{jobId}/finalists)
	MarkFinalists(w http.ResponseWriter, r *http.Request, jobID string)
	// (GET /usage)
	GetUsage(w http.ResponseWriter, r *http.Request, params GetUsageParams)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// ListShortlistParams are the query parameters of GET /jobs/{jobId}/shortlist.
type ListShortlistParams struct {
	// Stage keeps only decisions in this stage.
	Stage *string `form:"stage,omitempty" json:"stage,omitempty"`
}

// GetUsageParams are the query parameters of GET /usage.
type GetUsageParams struct {
	// Period is "day" (default) or "month".
	Period *string `form:"period,omitempty" json:"period,omitempty"`
}

// InvalidParamFormatError reports a path or query parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter chi.Router
	// Middlewares wrap every mutating route (POST, PUT).
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// HandlerWithOptions mounts si on a chi router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
		}
	}
	wrapper := serverWrapper{handler: si, errorHandler: options.ErrorHandlerFunc}

	r.Get("/health", wrapper.HealthCheck)
	r.Get("/metrics", wrapper.Metrics)
	r.Get("/usage", wrapper.GetUsage)

	r.Route("/jobs/{jobId}", func(jr chi.Router) {
		jr.Get("/weights", wrapper.GetWeights)
		jr.Get("/shortlist", wrapper.ListShortlist)
		jr.Get("/shortlist/{candidateId}/history", wrapper.GetHistory)

		jr.Group(func(wr chi.Router) {
			wr.Use(options.Middlewares...)
			wr.Post("/match", wrapper.MatchCandidates)
			wr.Put("/weights", wrapper.PutWeights)
			wr.Post("/shortlist", wrapper.RunShortlist)
			wr.Post("/shortlist/{candidateId}/reject", wrapper.RejectCandidate)
			wr.Post("/finalists", wrapper.MarkFinalists)
		})
	})
	return r
}

type serverWrapper struct {
	handler      ServerInterface
	errorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

func (sw serverWrapper) bindPath(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (sw serverWrapper) withJob(fn func(w http.ResponseWriter, r *http.Request, jobID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var jobID string
		if !sw.bindPath(w, r, "jobId", &jobID) {
			return
		}
		fn(w, r, jobID)
	}
}

func (sw serverWrapper) withCandidate(fn func(w http.ResponseWriter, r *http.Request, jobID, candidateID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var jobID, candidateID string
		if !sw.bindPath(w, r, "jobId", &jobID) || !sw.bindPath(w, r, "candidateId", &candidateID) {
			return
		}
		fn(w, r, jobID, candidateID)
	}
}

func (sw serverWrapper) MatchCandidates(w http.ResponseWriter, r *http.Request) {
	sw.withJob(sw.handler.MatchCandidates)(w, r)
}

func (sw serverWrapper) GetWeights(w http.ResponseWriter, r *http.Request) {
	sw.withJob(sw.handler.GetWeights)(w, r)
}

func (sw serverWrapper) PutWeights(w http.ResponseWriter, r *http.Request) {
	sw.withJob(sw.handler.PutWeights)(w, r)
}

func (sw serverWrapper) RunShortlist(w http.ResponseWriter, r *http.Request) {
	sw.withJob(sw.handler.RunShortlist)(w, r)
}

func (sw serverWrapper) MarkFinalists(w http.ResponseWriter, r *http.Request) {
	sw.withJob(sw.handler.MarkFinalists)(w, r)
}

func (sw serverWrapper) ListShortlist(w http.ResponseWriter, r *http.Request) {
	var jobID string
	if !sw.bindPath(w, r, "jobId", &jobID) {
		return
	}
	var params ListShortlistParams
	if err := runtime.BindQueryParameter("form", true, false, "stage", r.URL.Query(), &params.Stage); err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: "stage", Err: err})
		return
	}
	sw.handler.ListShortlist(w, r, jobID, params)
}

func (sw serverWrapper) GetHistory(w http.ResponseWriter, r *http.Request) {
	sw.withCandidate(sw.handler.GetHistory)(w, r)
}

func (sw serverWrapper) RejectCandidate(w http.ResponseWriter, r *http.Request) {
	sw.withCandidate(sw.handler.RejectCandidate)(w, r)
}

func (sw serverWrapper) GetUsage(w http.ResponseWriter, r *http.Request) {
	var params GetUsageParams
	if err := runtime.BindQueryParameter("form", true, false, "period", r.URL.Query(), &params.Period); err != nil {
		sw.errorHandler(w, r, &InvalidParamFormatError{ParamName: "period", Err: err})
		return
	}
	sw.handler.GetUsage(w, r, params)
}

func (sw serverWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	sw.handler.HealthCheck(w, r)
}

func (sw serverWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	sw.handler.Metrics(w, r)
}
