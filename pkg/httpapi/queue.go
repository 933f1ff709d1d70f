package httpapi

import (
	"encoding/json"
	"net/http"
)

type queueStatus struct {
	ModelID   string  `json:"model_id"`
	Depth     int     `json:"depth"`
	OldestWait float64 `json:"oldest_wait_seconds"`
	GateInUse int     `json:"gate_in_use"`
	GateLimit int     `json:"gate_limit"`
}

// handleQueueStatus reports queue depth, oldest wait, and gate occupancy for
// a model given as ?model_id=, the admin-facing equivalent of what the
// dashboard's gate events stream.
func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireToken(r) {
		writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}

	modelID := r.URL.Query().Get("model_id")
	if modelID == "" {
		writeJSONError(w, http.StatusBadRequest, "model_id query parameter is required")
		return
	}

	status := queueStatus{
		ModelID:    modelID,
		Depth:      s.scheduler.Queue.Depth(modelID),
		OldestWait: s.scheduler.Queue.OldestWait(modelID).Seconds(),
		GateInUse:  s.scheduler.Gate.InUse(modelID),
		GateLimit:  s.scheduler.Gate.Limit(modelID),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}
