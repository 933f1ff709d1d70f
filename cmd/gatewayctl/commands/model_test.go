package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestModelIngestSendsModelAndPath(t *testing.T) {
	var gotBody map[string]any
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newModelIngestCmd(client)
	cmd.Flags().Set("model", "m1")
	cmd.Flags().Set("path", "/models/m1.gguf")

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotPath != "/admin/models/ingest" {
		t.Fatalf("expected POST to /admin/models/ingest, got %s", gotPath)
	}
	if gotBody["model_id"] != "m1" || gotBody["path"] != "/models/m1.gguf" {
		t.Fatalf("unexpected request body: %v", gotBody)
	}
}
