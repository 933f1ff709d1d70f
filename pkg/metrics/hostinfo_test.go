package metrics

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fairgate/scheduler/pkg/logging"
)

func testLogger() logging.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l.WithField("component", "test")
}

func TestContainsFold(t *testing.T) {
	list := []string{"NVIDIA", "AMD"}
	if !containsFold(list, "nvidia") {
		t.Error("expected case-insensitive match for nvidia")
	}
	if containsFold(list, "intel") {
		t.Error("did not expect a match for intel")
	}
	if containsFold(nil, "anything") {
		t.Error("expected no match against an empty list")
	}
}

func TestCollectorRunPublishesAndStopsOnCancel(t *testing.T) {
	events := NewBroadcaster[HostStats]()
	sub := events.Subscribe("test")
	defer events.Unsubscribe("test")

	c := NewCollector(testLogger(), events)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	select {
	case stats := <-sub:
		if stats.PolledAt.IsZero() {
			t.Error("expected the initial poll to stamp PolledAt")
		}
	case <-time.After(time.Second):
		t.Fatal("expected an initial poll to be published immediately")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error after cancellation: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("expected Run to return promptly after context cancellation")
	}
}
