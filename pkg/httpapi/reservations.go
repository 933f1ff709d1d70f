package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fairgate/scheduler/pkg/db"
	"github.com/fairgate/scheduler/pkg/scheduler"
)

type reservationRequest struct {
	UserID  string    `json:"user_id"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Reason  string    `json:"reason"`
}

type reservationApproveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

type reservationAdminNoteRequest struct {
	AdminNote string `json:"admin_note"`
}

// handleReservations serves GET (list) and POST (create) on
// /admin/reservations. Reservations are system-wide windows, not per-model,
// so unlike an earlier revision of this endpoint there is no ?model_id
// filter.
func (s *Server) handleReservations(w http.ResponseWriter, r *http.Request) {
	if !s.requireToken(r) {
		writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}

	switch r.Method {
	case http.MethodGet:
		reservations, err := s.scheduler.Reservations.List(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to list reservations")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reservations)

	case http.MethodPost:
		var req reservationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		created, err := s.scheduler.Reservations.Create(r.Context(), db.Reservation{
			UserID:  req.UserID,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
			Reason:  req.Reason,
		})
		if err != nil {
			writeJSONError(w, reservationErrorStatus(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)

	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleReservationByID serves the reservation transition endpoints nested
// under /admin/reservations/{id}: DELETE to delete the row outright, and
// POST to /approve, /reject, /cancel, /force-activate, or /force-deactivate
// to drive the state machine (spec.md §4.5's "create, cancel, approve,
// reject, force-activate, force-deactivate, delete" transition set).
func (s *Server) handleReservationByID(w http.ResponseWriter, r *http.Request) {
	if !s.requireToken(r) {
		writeJSONError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/admin/reservations/")
	rest = strings.Trim(rest, "/")
	if rest == "" {
		writeJSONError(w, http.StatusNotFound, "reservation id required")
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodDelete {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.scheduler.Reservations.Delete(r.Context(), id); err != nil {
			writeJSONError(w, reservationErrorStatus(err), err.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var err error
	switch parts[1] {
	case "approve":
		var req reservationApproveRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		err = s.scheduler.Reservations.Approve(r.Context(), id, req.ApprovedBy)
	case "reject":
		var req reservationAdminNoteRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		err = s.scheduler.Reservations.Reject(r.Context(), id, req.AdminNote)
	case "cancel":
		err = s.scheduler.Reservations.Cancel(r.Context(), id)
	case "force-activate":
		err = s.scheduler.Reservations.ForceActivate(r.Context(), id)
	case "force-deactivate":
		err = s.scheduler.Reservations.ForceDeactivate(r.Context(), id)
	default:
		writeJSONError(w, http.StatusNotFound, "unknown reservation transition")
		return
	}

	if err != nil {
		writeJSONError(w, reservationErrorStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func reservationErrorStatus(err error) int {
	var se *scheduler.Error
	if errors.As(err, &se) {
		switch se.Kind {
		case scheduler.KindNotFound:
			return http.StatusNotFound
		case scheduler.KindInvalidArgument:
			return http.StatusBadRequest
		case scheduler.KindReservationConflict:
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}
