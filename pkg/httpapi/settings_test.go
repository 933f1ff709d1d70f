package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fairgate/scheduler/pkg/scheduler"
)

func testServerWithSettings() *Server {
	return &Server{scheduler: &scheduler.Scheduler{Settings: scheduler.NewSettingsStore(nil)}}
}

func TestHandleSettingsGetRendersSnapshot(t *testing.T) {
	s := testServerWithSettings()
	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	w := httptest.NewRecorder()

	s.handleSettings(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestHandleSettingsRequiresToken(t *testing.T) {
	s := testServerWithSettings()
	s.schedulerToken = "secret"
	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	w := httptest.NewRecorder()

	s.handleSettings(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a matching admin token, got %d", w.Code)
	}
}

func TestHandleSettingsRejectsUnknownMethod(t *testing.T) {
	s := testServerWithSettings()
	req := httptest.NewRequest(http.MethodDelete, "/admin/settings", nil)
	w := httptest.NewRecorder()

	s.handleSettings(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
