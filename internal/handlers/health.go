package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"pier/internal/httpx"
)

const readinessTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers serves liveness and readiness probes.
type HealthHandlers struct {
	store   Pinger
	started time.Time
	clock   func() time.Time
}

// NewHealthHandlers builds the probes. store may be nil, in which case
// readiness always succeeds.
func NewHealthHandlers(store Pinger) *HealthHandlers {
	return &HealthHandlers{store: store, started: time.Now(), clock: time.Now}
}

func (h *HealthHandlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	now := h.clock()
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    now.Sub(h.started).Round(time.Second).String(),
		"timestamp": now.UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	status := http.StatusOK

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			loggerFrom(r.Context()).Warn("readiness check failed", zap.String("check", "store"), zap.Error(err))
			checks["store"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	httpx.WriteJSON(w, status, map[string]any{
		"status": state,
		"checks": checks,
	})
}
