package httpapi

import (
	"bytes"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
)

// readAndRestore reads a request body and restores it so a downstream
// handler (the backend dispatcher) can still read it in full.
func readAndRestore(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// usageRecordingWriter tees a backend's response to the real client while
// buffering a copy, so the handler can parse the trailing `usage` object an
// OpenAI-compatible backend includes in its JSON response without holding
// up the response itself. Streamed (SSE) responses are best-effort: if the
// backend never emits a top-level `usage` object, tokenCounts reports false
// and the caller simply skips usage accounting for that request.
type usageRecordingWriter struct {
	http.ResponseWriter
	buf bytes.Buffer
}

func newUsageRecordingWriter(w http.ResponseWriter) *usageRecordingWriter {
	return &usageRecordingWriter{ResponseWriter: w}
}

func (u *usageRecordingWriter) Write(p []byte) (int, error) {
	u.buf.Write(p)
	return u.ResponseWriter.Write(p)
}

func (u *usageRecordingWriter) tokenCounts() (prompt, completion int64, ok bool) {
	usage := gjson.GetBytes(u.buf.Bytes(), "usage")
	if !usage.Exists() {
		return 0, 0, false
	}
	prompt = usage.Get("prompt_tokens").Int()
	completion = usage.Get("completion_tokens").Int()
	return prompt, completion, true
}
