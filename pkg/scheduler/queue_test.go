package scheduler

import (
	"context"
	"testing"
	"time"
)

func zeroUsage(context.Context, string) (int64, error) { return 0, nil }

func TestQueueGrantNextPrefersHigherPriority(t *testing.T) {
	settings := func() FairnessSettings { return DefaultFairnessSettings() }
	// token-low has heavy recent usage, so its request scores about
	// 100 - 10*ln(101) ≈ 54 against token-high's ≈ 100, even though it
	// has waited slightly longer.
	usage := func(_ context.Context, tokenID string) (int64, error) {
		if tokenID == "token-low" {
			return 100000, nil
		}
		return 0, nil
	}
	q := NewQueue(settings, usage)

	low := q.Enqueue("m1", "token-low")
	time.Sleep(2 * time.Millisecond)
	high := q.Enqueue("m1", "token-high")

	slot := &Slot{}
	granted := q.GrantNext(context.Background(), "m1", slot)
	if !granted {
		t.Fatal("expected a waiter to be granted the slot")
	}
	select {
	case got := <-high.granted:
		if got != slot {
			t.Fatal("expected the higher-priority request to receive the granted slot")
		}
	default:
		t.Fatal("expected the higher-priority request to be granted the slot")
	}
	select {
	case <-low.granted:
		t.Fatal("expected the lower-priority request to keep waiting")
	default:
	}
}

func TestQueueGrantNextFIFOOnEqualPriority(t *testing.T) {
	// With identical enqueue conditions (zero usage lookups, same
	// settings), ties resolve to the earliest-enqueued request.
	settings := func() FairnessSettings { return DefaultFairnessSettings() }
	q := NewQueue(settings, zeroUsage)

	first := q.Enqueue("m1", "a")
	second := q.Enqueue("m1", "b")

	best := q.highestPriority(context.Background(), "m1")
	if best.ID != first.ID {
		t.Fatalf("expected FIFO tie-break to prefer first-enqueued request, got %s want %s (other=%s)", best.ID, first.ID, second.ID)
	}
}

func TestQueueWaitTimesOutAndRemovesRequest(t *testing.T) {
	settings := func() FairnessSettings { return DefaultFairnessSettings() }
	q := NewQueue(settings, zeroUsage)
	req := q.Enqueue("m1", "a")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := q.Wait(ctx, req); err == nil {
		t.Fatal("expected timeout error")
	}
	if q.Depth("m1") != 0 {
		t.Fatalf("expected request removed from queue after timeout, depth=%d", q.Depth("m1"))
	}
}

func TestQueueGrantNextOnEmptyQueueReturnsFalse(t *testing.T) {
	settings := func() FairnessSettings { return DefaultFairnessSettings() }
	q := NewQueue(settings, zeroUsage)
	if q.GrantNext(context.Background(), "m1", &Slot{}) {
		t.Fatal("expected GrantNext to return false with nobody waiting")
	}
}
