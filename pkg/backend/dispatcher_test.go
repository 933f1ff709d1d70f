package backend

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/fairgate/scheduler/pkg/logging"
)

func testLogger() logging.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

func TestDispatcherForwardsToBackend(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(r.URL.Path))
	}))
	defer backendSrv.Close()

	u, _ := url.Parse(backendSrv.URL)
	port, _ := strconv.Atoi(u.Port())

	d := New(testLogger(), int32(port))

	req := httptest.NewRequest(http.MethodGet, "http://scheduler.local/v1/models", nil)
	w := httptest.NewRecorder()
	d.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != "/v1/models" {
		t.Fatalf("expected path rewritten to /v1/models, got %q", got)
	}
}

func TestTrimToOpenAIRoot(t *testing.T) {
	cases := map[string]string{
		"/v1/chat/completions":     "/v1/chat/completions",
		"/sched/m1/v1/completions": "/v1/completions",
		"/other":                   "/other",
	}
	for in, want := range cases {
		if got := trimToOpenAIRoot(in); got != want {
			t.Errorf("trimToOpenAIRoot(%q) = %q, want %q", in, got, want)
		}
	}
}
