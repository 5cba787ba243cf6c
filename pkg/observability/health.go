package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool and anything else that can report liveness
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus represents the health status of the service
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker manages health checks for the service
type HealthChecker struct {
	checks   map[string]Pinger
	draining func() bool
}

// NewHealthChecker creates a new HealthChecker.
// A nil database means the service runs without Postgres.
func NewHealthChecker(db Pinger) *HealthChecker {
	h := &HealthChecker{checks: make(map[string]Pinger)}
	if db != nil {
		h.checks["database"] = db
	}
	return h
}

// WithDrainState marks the service unhealthy once draining reports true
func (h *HealthChecker) WithDrainState(draining func() bool) *HealthChecker {
	h.draining = draining
	return h
}

// Check performs health checks and returns the status
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	overallStatus := "healthy"

	if len(h.checks) == 0 {
		checks["database"] = "not configured"
	}

	if h.draining != nil && h.draining() {
		checks["shutdown"] = "draining"
		overallStatus = "unhealthy"
	}

	for name, p := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := p.Ping(checkCtx)
		cancel()

		if err != nil {
			checks[name] = "unhealthy: " + err.Error()
			overallStatus = "unhealthy"
		} else {
			checks[name] = "healthy"
		}
	}

	return HealthStatus{
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// HealthHandler returns an HTTP handler for health checks
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(status)
	}
}
