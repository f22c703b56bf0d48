package notify

import (
	"context"
	"net/http"
	"strconv"

	"libraryapi/internal/httpx"
)

const secretHeader = "X-Internal-Secret"

// RunLister lists journaled runs.
type RunLister interface {
	LatestRuns(ctx context.Context, limit int) ([]Run, error)
}

type HTTPHandler struct {
	job    *Job
	runs   RunLister
	secret string
}

func NewHTTPHandler(job *Job, runs RunLister, secret string) *HTTPHandler {
	return &HTTPHandler{job: job, runs: runs, secret: secret}
}

func (h *HTTPHandler) authorized(w http.ResponseWriter, r *http.Request) bool {
	if h.secret != "" && r.Header.Get(secretHeader) != h.secret {
		httpx.Unauthorized(w, r, "invalid internal secret")
		return false
	}
	return true
}

// Trigger handles POST /internal/jobs/overdue-notices
func (h *HTTPHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	run, err := h.job.RunTriggered(r.Context(), TriggerManual)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSONSuccess(w, run)
}

// List handles GET /internal/jobs/overdue-notices
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(w, r) {
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20
	}

	runs, err := h.runs.LatestRuns(r.Context(), limit)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if runs == nil {
		runs = []Run{}
	}
	httpx.JSONSuccess(w, runs)
}
