package commands

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReservationCreateRejectsNonRFC3339Dates(t *testing.T) {
	client := func() *adminClient { return newAdminClient("http://unused", "") }
	cmd := newReservationCreateCmd(client)
	cmd.Flags().Set("user", "u1")
	cmd.Flags().Set("start", "not-a-date")
	cmd.Flags().Set("end", "2026-07-30T12:00:00Z")

	if err := cmd.RunE(cmd, nil); err == nil {
		t.Fatal("expected an error for a malformed --start value")
	}
}

func TestReservationApproveHitsApprovePath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newReservationApproveCmd(client)

	if err := cmd.RunE(cmd, []string{"res-1"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/admin/reservations/res-1/approve" {
		t.Fatalf("got %s %s, want POST /admin/reservations/res-1/approve", gotMethod, gotPath)
	}
}

func TestReservationRejectHitsRejectPath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newReservationRejectCmd(client)

	if err := cmd.RunE(cmd, []string{"res-1"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/admin/reservations/res-1/reject" {
		t.Fatalf("got %s %s, want POST /admin/reservations/res-1/reject", gotMethod, gotPath)
	}
}

func TestReservationCancelHitsCancelPath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newReservationCancelCmd(client)

	if err := cmd.RunE(cmd, []string{"res-1"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/admin/reservations/res-1/cancel" {
		t.Fatalf("got %s %s, want POST /admin/reservations/res-1/cancel", gotMethod, gotPath)
	}
}

func TestReservationForceActivateHitsForceActivatePath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newReservationForceActivateCmd(client)

	if err := cmd.RunE(cmd, []string{"res-1"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/admin/reservations/res-1/force-activate" {
		t.Fatalf("got %s %s, want POST /admin/reservations/res-1/force-activate", gotMethod, gotPath)
	}
}

func TestReservationForceDeactivateHitsForceDeactivatePath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newReservationForceDeactivateCmd(client)

	if err := cmd.RunE(cmd, []string{"res-1"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/admin/reservations/res-1/force-deactivate" {
		t.Fatalf("got %s %s, want POST /admin/reservations/res-1/force-deactivate", gotMethod, gotPath)
	}
}

func TestReservationDeleteHitsDeletePath(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := func() *adminClient { return newAdminClient(srv.URL, "") }
	cmd := newReservationDeleteCmd(client)

	if err := cmd.RunE(cmd, []string{"res-1"}); err != nil {
		t.Fatalf("RunE: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/admin/reservations/res-1" {
		t.Fatalf("got %s %s, want DELETE /admin/reservations/res-1", gotMethod, gotPath)
	}
}
