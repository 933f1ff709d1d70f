package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireToken(t *testing.T) {
	cases := []struct {
		name           string
		schedulerToken string
		header         string
		want           bool
	}{
		{"no configured token allows anything", "", "", true},
		{"no configured token allows anything even with a header", "", "whatever", true},
		{"matching header authorized", "secret", "secret", true},
		{"mismatched header rejected", "secret", "wrong", false},
		{"missing header rejected when token configured", "secret", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := &Server{schedulerToken: c.schedulerToken}
			req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
			if c.header != "" {
				req.Header.Set("X-Scheduler-Token", c.header)
			}
			if got := s.requireToken(req); got != c.want {
				t.Errorf("requireToken() = %v, want %v", got, c.want)
			}
		})
	}
}
