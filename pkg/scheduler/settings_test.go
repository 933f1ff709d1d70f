package scheduler

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestSettingsStoreLoadReturnsDefaults(t *testing.T) {
	store := NewSettingsStore(nil)
	got := store.Load()
	want := DefaultFairnessSettings()
	if got != want {
		t.Fatalf("Load() = %+v, want defaults %+v", got, want)
	}
}

func TestSettingsStoreSnapshotJSONRoundTrips(t *testing.T) {
	store := NewSettingsStore(nil)
	doc, err := store.SnapshotJSON()
	if err != nil {
		t.Fatalf("SnapshotJSON: %v", err)
	}

	want := DefaultFairnessSettings()
	if got := gjson.Get(doc, "fairness_base_priority").Float(); got != want.BasePriority {
		t.Errorf("fairness_base_priority = %v, want %v", got, want.BasePriority)
	}
	if got := gjson.Get(doc, "fairness_wait_weight").Float(); got != want.WaitWeight {
		t.Errorf("fairness_wait_weight = %v, want %v", got, want.WaitWeight)
	}
	if got := gjson.Get(doc, "fairness_window_minutes").Int(); got != want.WindowMinutes {
		t.Errorf("fairness_window_minutes = %v, want %v", got, want.WindowMinutes)
	}
	if got := gjson.Get(doc, "queue_timeout_secs").Int(); got != want.QueueTimeoutSecs {
		t.Errorf("queue_timeout_secs = %v, want %v", got, want.QueueTimeoutSecs)
	}
	if !strings.HasPrefix(doc, "{") {
		t.Errorf("expected a JSON object, got %q", doc)
	}
}
