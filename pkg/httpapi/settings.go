package httpapi

import (
	"io"
	"net/http"
)

// handleSettings serves GET (current fairness coefficients as JSON) and PUT
// (a partial JSON patch of any subset of them) on /admin/settings.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if !s.requireToken(r) {
		writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := s.scheduler.Settings.SnapshotJSON()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to render settings")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))

	case http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "could not read request body")
			return
		}
		if err := s.scheduler.Settings.Save(r.Context(), string(body)); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to save settings")
			return
		}
		doc, err := s.scheduler.Settings.SnapshotJSON()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to render settings")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))

	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
