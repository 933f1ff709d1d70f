package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{"bearer header", map[string]string{"Authorization": "Bearer abc123"}, "abc123"},
		{"bearer header trims whitespace", map[string]string{"Authorization": "Bearer  abc123  "}, "abc123"},
		{"falls back to token id header", map[string]string{"X-Token-ID": "tok-1"}, "tok-1"},
		{"malformed authorization header ignored", map[string]string{"Authorization": "Basic xyz"}, ""},
		{"no headers", nil, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
			for k, v := range c.header {
				req.Header.Set(k, v)
			}
			if got := bearerToken(req); got != c.want {
				t.Errorf("bearerToken() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSONError(w, http.StatusNotFound, `model "foo" not found`)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
	want := `{"error":{"message":"model \"foo\" not found"}}`
	if got := w.Body.String(); got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}
}

func TestJSONQuote(t *testing.T) {
	cases := map[string]string{
		"plain":          `"plain"`,
		`has "quotes"`:   `"has \"quotes\""`,
		"line\nbreak":    `"line\nbreak"`,
		`back\slash`:     `"back\\slash"`,
	}
	for in, want := range cases {
		if got := jsonQuote(in); got != want {
			t.Errorf("jsonQuote(%q) = %q, want %q", in, got, want)
		}
	}
}
