package scheduler

import (
	"sync"
)

// Gate bounds the number of concurrent in-flight requests per model. It
// holds no queueing logic of its own — Scheduler.Admit composes Gate with
// Queue to decide who gets the next freed slot — following the teacher's
// separation of a loader's slot bookkeeping from the caller's retry loop
// (leo-pony-model-runner/pkg/inference/scheduling/loader.go uses a single
// buffered-channel guard instead of sync.Mutex "to enable polling"; this
// gate keeps that channel-guard idiom; Scheduler.Admit makes a single
// non-blocking TryAcquire and otherwise waits on the Queue, never on the
// guard).
//
// A model only has its concurrency bounded once the container-lifecycle
// collaborator registers it (Register) with the number of slots its loaded
// instance can actually serve. An unregistered model is fail-open: TryAcquire
// hands out a Slot immediately without touching any counter, since a model
// with no known limit has not yet told the gate what "at capacity" means.
type Gate struct {
	guard      chan struct{}
	inUse      map[string]int
	limit      map[string]int
	registered map[string]bool
}

// NewGate creates an empty Gate. Every model starts unregistered (fail-open)
// until the container-lifecycle collaborator calls Register for it.
func NewGate() *Gate {
	g := &Gate{
		guard:      make(chan struct{}, 1),
		inUse:      make(map[string]int),
		limit:      make(map[string]int),
		registered: make(map[string]bool),
	}
	g.guard <- struct{}{}
	return g
}

// Register declares modelID loaded with maxSlots concurrent slots,
// beginning concurrency enforcement for it. Calling Register again for an
// already-registered model resets its in-use counter to zero — the same
// clean state a register;unregister;register round trip produces — so a
// container restart that re-registers a model never inherits a stale count
// from before the restart.
func (g *Gate) Register(modelID string, maxSlots int) {
	<-g.guard
	g.registered[modelID] = true
	g.limit[modelID] = maxSlots
	g.inUse[modelID] = 0
	g.guard <- struct{}{}
}

// Unregister removes modelID from concurrency enforcement entirely, making
// it fail-open again. Used when the container-lifecycle collaborator stops
// a model's backend instance.
func (g *Gate) Unregister(modelID string) {
	<-g.guard
	delete(g.registered, modelID)
	delete(g.limit, modelID)
	delete(g.inUse, modelID)
	g.guard <- struct{}{}
}

// Slot represents a held concurrency slot for a model. It must be released
// exactly once. Go has no Drop, so unlike the Rust AcquiredSlot (which
// releases its slot when dropped) this type relies on the caller calling
// Release, typically via defer immediately after a successful TryAcquire.
type Slot struct {
	gate    *Gate
	modelID string
	// counted is true if this slot incremented the gate's in-use counter at
	// acquisition time (the model was registered); Release only decrements
	// when counted, so a fail-open slot for an unregistered model is a
	// true no-op release.
	counted bool
	once    sync.Once
}

// Release returns the slot to the gate, making room for the next queued
// request on the same model. Safe to call more than once; only the first
// call has effect.
func (s *Slot) Release() {
	s.once.Do(func() {
		if s.counted {
			s.gate.release(s.modelID)
		}
	})
}

// TryAcquire attempts to take a slot for modelID without blocking. For a
// registered model it returns (slot, true) on success, (nil, false) if the
// model is already at its concurrency limit. For an unregistered model it
// always returns (slot, true) without touching any counter (fail-open).
func (g *Gate) TryAcquire(modelID string) (*Slot, bool) {
	<-g.guard
	defer func() { g.guard <- struct{}{} }()

	if !g.registered[modelID] {
		return &Slot{gate: g, modelID: modelID, counted: false}, true
	}
	if g.inUse[modelID] >= g.limit[modelID] {
		return nil, false
	}
	g.inUse[modelID]++
	return &Slot{gate: g, modelID: modelID, counted: true}, true
}

// InUse reports how many slots are currently held for modelID. Always zero
// for an unregistered model, since fail-open acquisitions are not counted.
func (g *Gate) InUse(modelID string) int {
	<-g.guard
	defer func() { g.guard <- struct{}{} }()
	return g.inUse[modelID]
}

// Limit reports the effective concurrency limit for modelID, or zero if it
// has not been registered (meaning no limit is enforced).
func (g *Gate) Limit(modelID string) int {
	<-g.guard
	defer func() { g.guard <- struct{}{} }()
	return g.limit[modelID]
}

// Registered reports whether modelID currently has a concurrency limit
// enforced.
func (g *Gate) Registered(modelID string) bool {
	<-g.guard
	defer func() { g.guard <- struct{}{} }()
	return g.registered[modelID]
}

func (g *Gate) release(modelID string) {
	<-g.guard
	if g.inUse[modelID] > 0 {
		g.inUse[modelID]--
	}
	g.guard <- struct{}{}
}
