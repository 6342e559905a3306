package api

import (
	"net/http"
)

// HealthCheck handles GET /utils/health-check. It reports backing-store
// reachability and is mounted outside the identity middleware so probes
// need no headers.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Check(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
