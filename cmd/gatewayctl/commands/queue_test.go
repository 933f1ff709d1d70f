package commands

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQueueCommandQueriesModelID(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model_id":"m1","depth":0}`))
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newQueueCmd(client)
	cmd.Flags().Set("model", "m1")

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotQuery != "model_id=m1" {
		t.Fatalf("expected query model_id=m1, got %q", gotQuery)
	}
}
