package scheduler

import (
	"testing"

	"github.com/fairgate/scheduler/pkg/db"
)

func TestReservationControllerCheckAdmission(t *testing.T) {
	c := NewReservationController(nil, nil, nil)

	if !c.CheckAdmission("bob", false) {
		t.Fatal("expected every request to pass before any reservation becomes active")
	}

	c.active = &db.Reservation{ID: "r1", UserID: "alice", Status: db.ReservationActive}

	if c.CheckAdmission("bob", false) {
		t.Fatal("expected a non-internal request from a different user to be rejected while a reservation is active")
	}
	if !c.CheckAdmission("alice", false) {
		t.Fatal("expected the reservation holder's own request to pass")
	}
	if !c.CheckAdmission("bob", true) {
		t.Fatal("expected an internal token to bypass the reservation check entirely")
	}

	c.active = nil
	if !c.CheckAdmission("bob", false) {
		t.Fatal("expected requests to pass again once the reservation is cleared")
	}
}
