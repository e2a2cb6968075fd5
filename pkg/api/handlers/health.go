package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// readinessTimeout bounds one store ping.
const readinessTimeout = 5 * time.Second

var errNoStore = errors.New("store not initialized")

// HealthState is the coarse outcome of a health check.
type HealthState string

const (
	StateHealthy   HealthState = "healthy"
	StateUnhealthy HealthState = "unhealthy"
)

// HealthReport is the body of both health endpoints. Checks holds per-component
// details on success; Error explains a failure.
type HealthReport struct {
	Status    HealthState       `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func report(state HealthState, checks map[string]string, err error) HealthReport {
	hr := HealthReport{Status: state, Timestamp: time.Now().UTC(), Checks: checks}
	if err != nil {
		hr.Error = err.Error()
	}
	return hr
}

// Healthchecker reports whether the backing store is reachable.
type Healthchecker interface {
	Healthcheck(ctx context.Context) error
}

// HealthHandler serves GET /health and GET /health/ready.
type HealthHandler struct {
	checker Healthchecker
	started time.Time
}

// NewHealthHandler creates a health handler. A nil checker makes the
// readiness check fail.
func NewHealthHandler(checker Healthchecker) *HealthHandler {
	return &HealthHandler{checker: checker, started: time.Now()}
}

// Liveness succeeds for as long as the process serves HTTP.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, report(StateHealthy, map[string]string{
		"service": "idrecon",
		"uptime":  time.Since(h.started).Truncate(time.Second).String(),
	}, nil))
}

// Readiness pings the store and answers 503 when it is unreachable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.checker == nil {
		writeJSON(w, http.StatusServiceUnavailable, report(StateUnhealthy, nil, errNoStore))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	start := time.Now()
	if err := h.checker.Healthcheck(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, report(StateUnhealthy, nil, err))
		return
	}
	writeOK(w, report(StateHealthy, map[string]string{
		"store":   string(StateHealthy),
		"latency": time.Since(start).String(),
	}, nil))
}
