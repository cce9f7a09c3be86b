package handler

import (
	"encoding/json"
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health reports each backing service, 503 when any is down
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	services := make(map[string]string)

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Warn().Err(err).Msg("postgres health check failed")
		services["postgres"] = "unhealthy"
	} else {
		services["postgres"] = "healthy"
	}

	if h.rdb != nil {
		if err := h.rdb.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Msg("redis health check failed")
			services["redis"] = "unhealthy"
		} else {
			services["redis"] = "healthy"
		}
	}

	status := "healthy"
	for _, s := range services {
		if s == "unhealthy" {
			status = "degraded"
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(HealthResponse{Status: status, Services: services})
}

// Ready returns 200 once the store is reachable
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
