package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fairgate/scheduler/pkg/internal/utils"
	"github.com/fairgate/scheduler/pkg/scheduler"
)

// inferenceRequest is the subset of an OpenAI-compatible request body this
// layer needs to resolve a model and account for usage; everything else is
// forwarded to the backend untouched. User carries the OpenAI-convention
// "user" field, which an internal token uses to attribute usage to a real
// person's email via the meta-token mechanism.
type inferenceRequest struct {
	Model string `json:"model"`
	User  string `json:"user"`
}

// handleInference is the single entry point for /v1/chat/completions,
// /v1/completions, and /v1/embeddings: resolve the caller's token and
// requested model to a concrete loaded model, admit a gate slot (queueing
// under fairness ordering if the model is already at capacity), forward the
// request to that model's backend, and record token usage from the
// backend's response before releasing the slot.
func (s *Server) handleInference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tokenID := bearerToken(r)
	if tokenID == "" {
		writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	body, err := readAndRestore(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	var reqBody inferenceRequest
	_ = json.Unmarshal(body, &reqBody)

	ctx := r.Context()
	tok, err := s.database.GetToken(ctx, tokenID)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unknown token")
		return
	}
	if tok.Revoked || (tok.ExpiresAt != nil && tok.ExpiresAt.Before(time.Now())) {
		writeJSONError(w, http.StatusUnauthorized, "token is revoked or expired")
		return
	}

	resolved, err := s.scheduler.Resolver.Resolve(ctx, tok, reqBody.Model)
	if err != nil {
		status := http.StatusInternalServerError
		if scheduler.IsNotFound(err) {
			status = http.StatusNotFound
		}
		s.log.WithError(err).WithField("requested_model", utils.SanitizeForLog(reqBody.Model)).Warn("model resolution failed")
		writeJSONError(w, status, err.Error())
		return
	}

	// Checked before the reservation/gate path so an unloaded-but-resolved
	// model (e.g. a category's preferred model, reported even when not
	// loaded) never masks as "reserved" or silently dispatches to a zero
	// backend port.
	if !resolved.Loaded {
		writeJSONErrorCode(w, http.StatusServiceUnavailable, "model_not_loaded", "resolved model is not currently loaded", nil)
		return
	}

	slot, err := s.scheduler.Admit(ctx, resolved.ModelID, tok.ID, tok.UserID, tok.IsInternal)
	if err != nil {
		status := http.StatusInternalServerError
		code := ""
		var headers http.Header
		var se *scheduler.Error
		if errors.As(err, &se) {
			switch se.Kind {
			case scheduler.KindReservationConflict:
				status = http.StatusServiceUnavailable
				code = "system_reserved"
			case scheduler.KindQueueTimeout:
				status = http.StatusTooManyRequests
				headers = http.Header{"Retry-After": {strconv.FormatInt(s.scheduler.Settings.Load().QueueTimeoutSecs, 10)}}
			}
		}
		writeJSONErrorCode(w, status, code, err.Error(), headers)
		return
	}
	defer s.scheduler.Release(context.Background(), resolved.ModelID, slot)

	s.database.TouchModelLastUsed(ctx, resolved.ModelID)

	rec := newUsageRecordingWriter(w)
	s.dispatchers.get(resolved.BackendPort).ServeHTTP(rec, r)

	if prompt, completion, ok := rec.tokenCounts(); ok {
		if err := s.scheduler.Usage.Record(ctx, tok, reqBody.User, resolved.ModelID, prompt, completion); err != nil {
			s.log.WithError(err).Warn("failed to record usage")
		}
	}
}

// handleListModels reports every currently loaded model, the OpenAI
// /v1/models shape.
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.database.ListLoadedModels(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list models")
		return
	}

	type entry struct {
		ID     string `json:"id"`
		Object string `json:"object"`
	}
	out := struct {
		Object string  `json:"object"`
		Data   []entry `json:"data"`
	}{Object: "list"}
	for _, m := range models {
		out.Data = append(out.Data, entry{ID: m.ID, Object: "model"})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
