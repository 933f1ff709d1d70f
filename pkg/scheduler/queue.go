package scheduler

import (
	"context"
	"sync"
	"time"
)

// QueuedRequest is one request waiting for a gate slot on a particular
// model. It is created by Enqueue and released by GrantNext or by timeout
// cleanup (RemoveByID).
type QueuedRequest struct {
	ID         string
	ModelID    string
	TokenID    string
	EnqueuedAt time.Time

	// granted is a one-shot, buffered-size-1 channel through which GrantNext
	// hands the waiter its acquired Slot directly, rather than merely
	// signalling "something changed, try again." Handing the slot over
	// atomically (instead of waking the waiter to race for it via
	// TryAcquire) avoids a lost-wakeup / stolen-slot race between the
	// waiter that was chosen and any other retrying waiter. We use a
	// dedicated channel per request rather than a broadcast condition
	// variable so that waking one request never wakes any other, and so a
	// timed-out waiter can be torn down without racing a concurrent
	// dequeue.
	granted chan *Slot

	settings FairnessSettings
}

// priority computes this request's current fairness score given its
// token's recent usage.
func (q *QueuedRequest) priority(now time.Time, recentTokens int64) float64 {
	wait := now.Sub(q.EnqueuedAt).Seconds()
	return q.settings.Priority(wait, recentTokens)
}

// usageLookup resolves the recent-usage figure for a token, used by the
// queue to score waiting requests without the queue itself depending on
// the database.
type usageLookup func(ctx context.Context, tokenID string) (int64, error)

// Queue holds, per model id, the set of requests currently waiting for a
// gate slot on that model. GrantNext always picks the highest-priority
// waiting request for a model, breaking ties by earliest enqueue time (a
// linear scan is acceptable at the queue depths this scheduler targets;
// see the Testable Properties section on boundary behavior for the
// rationale).
type Queue struct {
	mu       sync.Mutex
	byModel  map[string][]*QueuedRequest
	byID     map[string]*QueuedRequest
	lookup   usageLookup
	settings func() FairnessSettings
}

// NewQueue creates an empty Queue. settingsFn is called once per Enqueue,
// and each request keeps that snapshot for its whole wait, so settings
// updates apply only to requests enqueued afterwards. lookup resolves a
// token's recent usage for the fairness formula.
func NewQueue(settingsFn func() FairnessSettings, lookup usageLookup) *Queue {
	return &Queue{
		byModel:  make(map[string][]*QueuedRequest),
		byID:     make(map[string]*QueuedRequest),
		lookup:   lookup,
		settings: settingsFn,
	}
}

// Enqueue adds a request to the wait line for modelID and returns it. The
// caller must eventually call Wait (or discard it via RemoveByID on
// timeout/cancellation) exactly once.
func (q *Queue) Enqueue(modelID, tokenID string) *QueuedRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	req := &QueuedRequest{
		ID:         newID(),
		ModelID:    modelID,
		TokenID:    tokenID,
		EnqueuedAt: time.Now(),
		granted:    make(chan *Slot, 1),
		settings:   q.settings(),
	}
	q.byModel[modelID] = append(q.byModel[modelID], req)
	q.byID[req.ID] = req
	return req
}

// Wait blocks until req is granted a slot or ctx is cancelled. On
// cancellation it removes req from the queue itself, so the caller need
// not also call RemoveByID. If GrantNext had already claimed req when ctx
// was cancelled, Wait returns the granted slot instead of an error.
func (q *Queue) Wait(ctx context.Context, req *QueuedRequest) (*Slot, error) {
	select {
	case slot := <-req.granted:
		return slot, nil
	case <-ctx.Done():
		q.mu.Lock()
		removed := q.removeLocked(req.ModelID, req.ID)
		q.mu.Unlock()
		if !removed {
			// GrantNext removed req first and sends its slot without
			// blocking; take it so the slot is not stranded in granted.
			return <-req.granted, nil
		}
		return nil, ctx.Err()
	}
}

// highestPriority returns the highest-priority waiting request for
// modelID without removing it, or nil if none is waiting.
func (q *Queue) highestPriority(ctx context.Context, modelID string) *QueuedRequest {
	q.mu.Lock()
	waiting := append([]*QueuedRequest(nil), q.byModel[modelID]...)
	q.mu.Unlock()
	if len(waiting) == 0 {
		return nil
	}

	now := time.Now()
	var best *QueuedRequest
	var bestScore float64
	for _, req := range waiting {
		recent, err := q.lookup(ctx, req.TokenID)
		if err != nil {
			recent = 0
		}
		score := req.priority(now, recent)
		// Strict greater-than keeps ties resolved in favor of the
		// earliest-enqueued candidate, since waiting is iterated in
		// enqueue order (see original_source queue.rs: partial_cmp with
		// Equal falling through to insertion order).
		if best == nil || score > bestScore {
			best = req
			bestScore = score
		}
	}
	return best
}

// GrantNext removes the highest-priority waiting request for modelID and
// hands it slot directly, returning true if a waiter was found and granted
// the slot. It returns false (without consuming slot) if nobody is waiting,
// or if the candidate waiter had already abandoned the queue (timed out and
// removed itself via RemoveByID) between highestPriority and the locked
// removal below — in both cases the caller must return the slot to the gate
// instead, since nothing here has taken ownership of it.
func (q *Queue) GrantNext(ctx context.Context, modelID string, slot *Slot) bool {
	best := q.highestPriority(ctx, modelID)
	if best == nil {
		return false
	}

	q.mu.Lock()
	removed := q.removeLocked(modelID, best.ID)
	q.mu.Unlock()

	if !removed {
		// best was concurrently removed (a timed-out Wait called
		// RemoveByID) before we could claim it; nobody will ever read
		// its granted channel, so a slot sent there would be leaked
		// forever. Let the caller reclaim it instead.
		return false
	}

	best.granted <- slot
	return true
}

// RemoveByID removes a request from modelID's wait line without waking it,
// used for timeout and cancellation cleanup. It is a no-op if the request
// is no longer present (e.g. it was concurrently dequeued).
func (q *Queue) RemoveByID(modelID, id string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(modelID, id)
}

// removeLocked removes id from modelID's wait line and reports whether it
// was still present to remove. Callers hold q.mu.
func (q *Queue) removeLocked(modelID, id string) bool {
	if _, ok := q.byID[id]; !ok {
		return false
	}
	delete(q.byID, id)
	list := q.byModel[modelID]
	for i, r := range list {
		if r.ID == id {
			q.byModel[modelID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return true
}

// Depth returns the number of requests currently waiting for modelID.
func (q *Queue) Depth(modelID string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.byModel[modelID])
}

// OldestWait returns how long the longest-waiting request for modelID has
// been queued, or zero if nothing is waiting.
func (q *Queue) OldestWait(modelID string) time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	list := q.byModel[modelID]
	if len(list) == 0 {
		return 0
	}
	oldest := list[0].EnqueuedAt
	for _, r := range list[1:] {
		if r.EnqueuedAt.Before(oldest) {
			oldest = r.EnqueuedAt
		}
	}
	return time.Since(oldest)
}
