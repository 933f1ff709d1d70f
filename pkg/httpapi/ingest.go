package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/fairgate/scheduler/pkg/scheduler"
)

type ingestRequest struct {
	ModelID string `json:"model_id"`
	Path    string `json:"path"`
}

// handleIngest parses a GGUF file's architecture header and records it
// against an existing model row, used once when a model is registered so
// the resolver can report accurate context/layer/head counts afterward.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if !s.requireToken(r) {
		writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := scheduler.IngestGGUF(r.Context(), s.database, req.ModelID, req.Path); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
