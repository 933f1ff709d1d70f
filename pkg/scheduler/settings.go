package scheduler

import (
	"context"
	"strconv"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/fairgate/scheduler/pkg/db"
)

// settingsKeys names every key this store recognizes in the settings table,
// matching the key names operators PATCH/GET over /admin/settings.
const (
	keyBasePriority     = "fairness_base_priority"
	keyWaitWeight       = "fairness_wait_weight"
	keyUsageWeight      = "fairness_usage_weight"
	keyUsageScale       = "fairness_usage_scale"
	keyWindowMinutes    = "fairness_window_minutes"
	keyQueueTimeoutSecs = "queue_timeout_secs"
)

// SettingsStore is a hot-reloadable, copy-on-read snapshot of
// FairnessSettings backed by the settings table. Readers never block on a
// database round trip: Load returns the in-memory snapshot, and Refresh is
// the only method that talks to the database.
type SettingsStore struct {
	database *db.Database

	mu       sync.RWMutex
	snapshot FairnessSettings
}

// NewSettingsStore creates a store seeded with the factory defaults. Call
// Refresh once during startup to pull persisted overrides.
func NewSettingsStore(database *db.Database) *SettingsStore {
	return &SettingsStore{database: database, snapshot: DefaultFairnessSettings()}
}

// Load returns the current in-memory settings snapshot. Safe for
// concurrent use; the returned value is a copy, so callers may hold onto it
// without racing a concurrent Refresh.
func (s *SettingsStore) Load() FairnessSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Refresh reloads settings from the database. Unknown keys are ignored.
// A key whose value fails to parse as a float keeps its previous value
// rather than aborting the whole refresh, so a single operator typo
// cannot corrupt the rest of the snapshot.
func (s *SettingsStore) Refresh(ctx context.Context) error {
	rows, err := s.database.ListSettings(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.snapshot

	if v, ok := rows[keyBasePriority]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			next.BasePriority = f
		}
	}
	if v, ok := rows[keyWaitWeight]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			next.WaitWeight = f
		}
	}
	if v, ok := rows[keyUsageWeight]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			next.UsageWeight = f
		}
	}
	if v, ok := rows[keyUsageScale]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			next.UsageScale = f
		}
	}
	if v, ok := rows[keyWindowMinutes]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			next.WindowMinutes = n
		}
	}
	if v, ok := rows[keyQueueTimeoutSecs]; ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			next.QueueTimeoutSecs = n
		}
	}

	s.snapshot = next
	return nil
}

// Save persists a partial settings update (a JSON document with any subset
// of fairness_base_priority/fairness_wait_weight/fairness_usage_weight/
// fairness_usage_scale/fairness_window_minutes/queue_timeout_secs) and
// refreshes the in-memory snapshot. Using gjson/sjson for the patch
// document lets operators PATCH a single coefficient without re-sending
// the whole settings object.
func (s *SettingsStore) Save(ctx context.Context, patchJSON string) error {
	keys := []string{keyBasePriority, keyWaitWeight, keyUsageWeight, keyUsageScale, keyWindowMinutes, keyQueueTimeoutSecs}
	for _, key := range keys {
		result := gjson.Get(patchJSON, key)
		if !result.Exists() {
			continue
		}
		if err := s.database.UpsertSetting(ctx, key, result.Raw); err != nil {
			return err
		}
	}
	return s.Refresh(ctx)
}

// SnapshotJSON marshals the current settings to a JSON document, used by the
// admin "GET settings" endpoint.
func (s *SettingsStore) SnapshotJSON() (string, error) {
	snap := s.Load()
	doc := "{}"
	var err error
	doc, err = sjson.Set(doc, keyBasePriority, snap.BasePriority)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, keyWaitWeight, snap.WaitWeight)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, keyUsageWeight, snap.UsageWeight)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, keyUsageScale, snap.UsageScale)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, keyWindowMinutes, snap.WindowMinutes)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, keyQueueTimeoutSecs, snap.QueueTimeoutSecs)
	if err != nil {
		return "", err
	}
	return doc, nil
}
