package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"libraryapi/internal/loan"
)

type stubLister struct {
	runs []Run
	err  error
}

func (s stubLister) LatestRuns(_ context.Context, _ int) ([]Run, error) {
	return s.runs, s.err
}

func TestHTTPHandler_Trigger(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		job, _, _, _ := newTestJob()
		h := NewHTTPHandler(job, stubLister{}, "s3cret")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/internal/jobs/overdue-notices", nil)
		r.Header.Set(secretHeader, "nope")

		h.Trigger(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("runs job", func(t *testing.T) {
		job, finder, mailer, runs := newTestJob()
		finder.On("FindOverdue", mock.Anything, 4).Return([]loan.Loan{{ID: 1, Email: "a@x.com"}}, nil)
		mailer.On("Send", mock.Anything, testMessage, []string{"a@x.com"}).Return(nil)
		runs.On("CreateRun", mock.Anything, mock.Anything).Return(nil)
		runs.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)
		h := NewHTTPHandler(job, stubLister{}, "s3cret")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/internal/jobs/overdue-notices", nil)
		r.Header.Set(secretHeader, "s3cret")

		h.Trigger(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"trigger":"MANUAL"`)
		assert.Contains(t, w.Body.String(), `"status":"COMPLETED"`)
		assert.Contains(t, w.Body.String(), `"recipients":1`)
	})

	t.Run("job failure", func(t *testing.T) {
		job, finder, _, runs := newTestJob()
		finder.On("FindOverdue", mock.Anything, 4).Return(nil, errors.New("db down"))
		runs.On("CreateRun", mock.Anything, mock.Anything).Return(nil)
		runs.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)
		h := NewHTTPHandler(job, stubLister{}, "")

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/internal/jobs/overdue-notices", nil)

		h.Trigger(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHTTPHandler_List(t *testing.T) {
	job, _, _, _ := newTestJob()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/internal/jobs/overdue-notices", nil)
	NewHTTPHandler(job, stubLister{}, "").List(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/internal/jobs/overdue-notices?limit=5", nil)
	NewHTTPHandler(job, stubLister{runs: []Run{{ID: 3, Status: StatusFailed}}}, "").List(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":3`)
}

func TestHTTPHandler_TriggerWhileRunning(t *testing.T) {
	job, _, _, _ := newTestJob()
	job.mu.Lock()
	defer job.mu.Unlock()
	h := NewHTTPHandler(job, stubLister{}, "")

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/internal/jobs/overdue-notices", nil)

	h.Trigger(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Envio de avisos já em andamento")
}
