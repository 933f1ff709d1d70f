package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fairgate/scheduler/pkg/tailbuffer"
)

func TestHandleLogsDrainsTailBuffer(t *testing.T) {
	tail := tailbuffer.NewTailBuffer(1024)
	tail.Write([]byte("server started\nrequest admitted\n"))

	s := &Server{tail: tail}
	req := httptest.NewRequest(http.MethodGet, "/admin/logs", nil)
	w := httptest.NewRecorder()

	s.handleLogs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "server started\nrequest admitted\n" {
		t.Fatalf("body = %q, want buffered log lines", got)
	}

	w2 := httptest.NewRecorder()
	s.handleLogs(w2, req)
	if got := w2.Body.String(); got != "" {
		t.Fatalf("expected a second read to drain nothing, got %q", got)
	}
}

func TestHandleLogsRequiresToken(t *testing.T) {
	s := &Server{tail: tailbuffer.NewTailBuffer(64), schedulerToken: "secret"}
	req := httptest.NewRequest(http.MethodGet, "/admin/logs", nil)
	w := httptest.NewRecorder()

	s.handleLogs(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a matching admin token, got %d", w.Code)
	}
}

func TestHandleLogsRejectsNonGET(t *testing.T) {
	s := &Server{tail: tailbuffer.NewTailBuffer(64)}
	req := httptest.NewRequest(http.MethodPost, "/admin/logs", nil)
	w := httptest.NewRecorder()

	s.handleLogs(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for a non-GET request, got %d", w.Code)
	}
}
