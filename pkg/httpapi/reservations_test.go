package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/fairgate/scheduler/pkg/scheduler"
)

func TestReservationErrorStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &scheduler.Error{Kind: scheduler.KindNotFound, Message: "x"}, http.StatusNotFound},
		{"invalid argument", &scheduler.Error{Kind: scheduler.KindInvalidArgument, Message: "x"}, http.StatusBadRequest},
		{"conflict", &scheduler.Error{Kind: scheduler.KindReservationConflict, Message: "x"}, http.StatusConflict},
		{"unclassified scheduler error", &scheduler.Error{Kind: scheduler.KindUnavailable, Message: "x"}, http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := reservationErrorStatus(c.err); got != c.want {
				t.Errorf("reservationErrorStatus(%v) = %d, want %d", c.err, got, c.want)
			}
		})
	}
}
