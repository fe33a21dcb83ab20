package handlers

import (
	"aed-location-service/internal/platform/metrics"
	"context"
	"net/http"
	"time"
)

// HealthHandler reports liveness together with the size of the location store.
type HealthHandler struct {
	Store metrics.Counter
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	n, err := h.Store.Count(ctx)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "location store unavailable")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"locations": n,
	})
}
