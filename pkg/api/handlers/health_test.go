package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/idrecon/pkg/dirsync"
	"github.com/marmos91/idrecon/pkg/ingest"
	"github.com/marmos91/idrecon/pkg/recon/classify"
	"github.com/marmos91/idrecon/pkg/reconciler"
	"github.com/marmos91/idrecon/pkg/store"
)

type fakeChecker struct{ err error }

func (f fakeChecker) Healthcheck(context.Context) error { return f.err }

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) HealthReport {
	t.Helper()
	var resp HealthReport
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestLiveness(t *testing.T) {
	w := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, StateHealthy, resp.Status)
	assert.Equal(t, "idrecon", resp.Checks["service"])
	assert.Contains(t, resp.Checks, "uptime")
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name    string
		checker Healthchecker
		status  int
		errText string
	}{
		{"no store", nil, http.StatusServiceUnavailable, "store not initialized"},
		{"store down", fakeChecker{errors.New("database is locked")}, http.StatusServiceUnavailable, "database is locked"},
		{"store up", fakeChecker{}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.checker).Readiness(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.Equal(t, tt.errText, resp.Error)
			if tt.errText == "" {
				assert.Equal(t, StateHealthy, resp.Status)
				assert.Equal(t, "healthy", resp.Checks["store"])
			} else {
				assert.Equal(t, StateUnhealthy, resp.Status)
				assert.Empty(t, resp.Checks)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		public bool
	}{
		{store.ErrNotFound, http.StatusNotFound, true},
		{fmt.Errorf("sync: %w", dirsync.ErrDomainNotConfigured), http.StatusNotFound, true},
		{fmt.Errorf("parse: %w", ingest.ErrNoHeader), http.StatusBadRequest, true},
		{classify.ErrInvalidRules, http.StatusBadRequest, true},
		{reconciler.ErrUnknownDomain, http.StatusBadRequest, true},
		{fmt.Errorf("bind: %w", dirsync.ErrUnavailable), http.StatusBadGateway, true},
		{&http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, true},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, false},
		{errors.New("disk full"), http.StatusInternalServerError, false},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, public := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.public, public)
		})
	}
}

func TestWriteErrorHidesInternalText(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	writeError(w, r, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestWriteProblem(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/groups/members", nil)
	badRequest(w, r, "domain is required")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ContentTypeProblemJSON, w.Header().Get("Content-Type"))
	var p Problem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, Problem{
		Type:     "about:blank",
		Title:    "Bad Request",
		Status:   400,
		Detail:   "domain is required",
		Instance: "/api/v1/groups/members",
	}, p)
}
