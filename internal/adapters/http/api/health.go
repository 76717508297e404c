package api

import (
	"net/http"
)

// HealthHandler reports whether a report is available.
type HealthHandler struct {
	provider ReportProvider
}

type healthResponse struct {
	Status    string `json:"status"`
	RunID     string `json:"run_id,omitempty"`
	Snapshots int    `json:"snapshots"`
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(provider ReportProvider) *HealthHandler {
	return &HealthHandler{provider: provider}
}

// HandleHealth handles GET /healthz requests.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	rep, err := h.provider.Report(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", RunID: rep.RunID, Snapshots: rep.TotalSnapshots})
}
