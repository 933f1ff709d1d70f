package httpapi

import (
	"net/http"
	"strings"
)

// bearerToken extracts the token identifier a caller presented, either as
// an OpenAI-style "Authorization: Bearer <token>" header or, for internal
// tooling, an explicit X-Token-ID header.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if rest, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(rest)
		}
	}
	return r.Header.Get("X-Token-ID")
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSONErrorCode(w, status, "", message, nil)
}

// writeJSONErrorCode writes an error response carrying a machine-readable
// code alongside the human-readable message (spec.md's caller contract
// names codes like system_reserved and model_not_loaded), and, if headers
// is non-nil, sets any extra response headers (e.g. Retry-After) before the
// status line is written.
func writeJSONErrorCode(w http.ResponseWriter, status int, code, message string, headers http.Header) {
	for k, vs := range headers {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := `{"error":{"message":` + jsonQuote(message)
	if code != "" {
		body += `,"code":` + jsonQuote(code)
	}
	body += `}}`
	w.Write([]byte(body))
}

func jsonQuote(s string) string {
	b := make([]byte, 0, len(s)+2)
	b = append(b, '"')
	for _, r := range s {
		switch r {
		case '"', '\\':
			b = append(b, '\\', byte(r))
		case '\n':
			b = append(b, '\\', 'n')
		default:
			b = append(b, string(r)...)
		}
	}
	b = append(b, '"')
	return string(b)
}
