package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSettingsSetRequiresAtLeastOneFlag(t *testing.T) {
	client := func() *adminClient { return newAdminClient("http://unused", "") }
	cmd := newSettingsSetCmd(client)
	cmd.SetArgs(nil)
	if err := cmd.RunE(cmd, nil); err == nil {
		t.Fatal("expected an error when no flags are set")
	}
}

func TestSettingsSetSendsOnlyChangedFields(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gotBody)
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newSettingsSetCmd(client)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--wait-weight=2.5"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(gotBody) != 1 {
		t.Fatalf("expected exactly one changed field sent, got %v", gotBody)
	}
	if gotBody["fairness_wait_weight"] != 2.5 {
		t.Fatalf("expected fairness_wait_weight=2.5, got %v", gotBody["fairness_wait_weight"])
	}
	if !strings.Contains(out.String(), "fairness_wait_weight") {
		t.Fatalf("expected command output to echo the response, got %q", out.String())
	}
}

func TestSettingsGetPrintsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"fairness_base_priority": 100.0})
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newSettingsGetCmd(client)
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "fairness_base_priority") {
		t.Fatalf("expected output to contain fairness_base_priority, got %q", out.String())
	}
}
