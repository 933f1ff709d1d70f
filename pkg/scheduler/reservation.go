package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/fairgate/scheduler/pkg/db"
	"github.com/fairgate/scheduler/pkg/logging"
	"github.com/fairgate/scheduler/pkg/metrics"
)

// autoCancelNote is written to a reservation that is auto-cancelled by the
// tick loop because its start time passed without ever being approved.
const autoCancelNote = "Auto-cancelled: start time passed without approval"

// ReservationEvent is published to the reservation broadcaster whenever a
// reservation is created or changes status, so the dashboard can react.
type ReservationEvent struct {
	ReservationID string
	UserID        string
	Status        db.ReservationStatus
	At            time.Time
}

// ReservationController owns the reservation state machine: a single,
// system-wide exclusive-access window (not one per model) that validates
// new windows against overlap and advances pending/approved rows toward
// active/completed (or auto-cancels unapproved pending ones) on every tick.
type ReservationController struct {
	database *db.Database
	log      logging.Logger
	events   *metrics.Broadcaster[any]

	// active caches the single system-wide active reservation in memory so
	// the gate's admission check never needs a database round trip. It is
	// rebuilt from the database at startup (Recover) and kept current by
	// Tick.
	mu     sync.RWMutex
	active *db.Reservation
}

// NewReservationController constructs a ReservationController.
func NewReservationController(database *db.Database, log logging.Logger, events *metrics.Broadcaster[any]) *ReservationController {
	return &ReservationController{
		database: database,
		log:      log,
		events:   events,
	}
}

// Recover rebuilds the in-memory active-reservation cache from the
// database. There is at most one active reservation by invariant, so this
// only needs to find the row already marked active; it is called once at
// process startup before the tick loop begins.
func (c *ReservationController) Recover(ctx context.Context) error {
	r, err := c.database.FindActiveReservation(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.active = r
	c.mu.Unlock()
	return nil
}

// Create validates a proposed reservation window against every other
// non-terminal reservation and, if it does not overlap, inserts it in the
// pending state. Adjacent windows (one ending exactly when another begins)
// are allowed.
func (c *ReservationController) Create(ctx context.Context, r db.Reservation) (db.Reservation, error) {
	if !r.EndAt.After(r.StartAt) {
		return db.Reservation{}, newError(KindInvalidArgument, "end_at must be after start_at", nil)
	}

	overlap, err := c.database.FindOverlappingReservation(ctx, r.StartAt, r.EndAt, "")
	if err != nil {
		return db.Reservation{}, newError(KindUnavailable, "checking overlap", err)
	}
	if overlap != nil {
		return db.Reservation{}, newError(KindReservationConflict, "reservation window overlaps an existing reservation", ErrReservationOverlap)
	}

	r.ID = newID()
	r.Status = db.ReservationPending
	r.CreatedAt = time.Now()
	if err := c.database.InsertReservation(ctx, r); err != nil {
		return db.Reservation{}, newError(KindUnavailable, "inserting reservation", err)
	}
	c.publish(r)
	return r, nil
}

// Approve transitions a pending reservation to approved, re-checking the
// overlap rule against the reservation's own window: the set of
// pending/approved reservations can have changed since Create ran, so two
// previously non-overlapping pending windows must not both be approved into
// overlapping approved ones.
func (c *ReservationController) Approve(ctx context.Context, id, approvedBy string) error {
	r, err := c.get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != db.ReservationPending {
		return newError(KindInvalidArgument, "only a pending reservation may be approved", ErrInvalidTransition)
	}

	overlap, err := c.database.FindOverlappingReservation(ctx, r.StartAt, r.EndAt, r.ID)
	if err != nil {
		return newError(KindUnavailable, "checking overlap", err)
	}
	if overlap != nil {
		return newError(KindReservationConflict, "reservation window overlaps an existing reservation", ErrReservationOverlap)
	}

	return c.updateStatus(ctx, r, db.ReservationApproved, "", &approvedBy)
}

// Reject transitions a pending reservation to rejected; unlike Cancel, this
// is reserved for an administrator declining a request outright rather than
// withdrawing one already approved.
func (c *ReservationController) Reject(ctx context.Context, id, adminNote string) error {
	r, err := c.get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != db.ReservationPending {
		return newError(KindInvalidArgument, "only a pending reservation may be rejected", ErrInvalidTransition)
	}
	return c.updateStatus(ctx, r, db.ReservationRejected, adminNote, nil)
}

// Cancel transitions a pending or approved reservation to cancelled. An
// active reservation is not cancellable mid-window; use ForceDeactivate, or
// let it run to completion and create a new one instead.
func (c *ReservationController) Cancel(ctx context.Context, id string) error {
	r, err := c.get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != db.ReservationPending && r.Status != db.ReservationApproved {
		return newError(KindInvalidArgument, "only pending or approved reservations may be cancelled", ErrInvalidTransition)
	}
	return c.updateStatus(ctx, r, db.ReservationCancelled, "", nil)
}

// ForceActivate jumps an approved reservation directly into active,
// skipping the wait for Tick to observe start_at. Used for an operator
// declaring "this window begins now." It fails while another reservation
// is active, keeping at most one reservation active at a time.
func (c *ReservationController) ForceActivate(ctx context.Context, id string) error {
	r, err := c.get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != db.ReservationApproved {
		return newError(KindInvalidArgument, "only an approved reservation may be force-activated", ErrInvalidTransition)
	}
	c.mu.RLock()
	busy := c.active != nil
	c.mu.RUnlock()
	if busy {
		return newError(KindReservationConflict, "another reservation is already active", ErrInvalidTransition)
	}
	if err := c.updateStatus(ctx, r, db.ReservationActive, "", nil); err != nil {
		return err
	}
	r.Status = db.ReservationActive
	c.mu.Lock()
	c.active = &r
	c.mu.Unlock()
	return nil
}

// ForceDeactivate ends an active reservation immediately, shortcutting its
// end_at. Used for an operator declaring "this window is over now."
func (c *ReservationController) ForceDeactivate(ctx context.Context, id string) error {
	r, err := c.get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status != db.ReservationActive {
		return newError(KindInvalidArgument, "only an active reservation may be force-deactivated", ErrInvalidTransition)
	}
	if err := c.updateStatus(ctx, r, db.ReservationCompleted, "", nil); err != nil {
		return err
	}
	c.mu.Lock()
	if c.active != nil && c.active.ID == id {
		c.active = nil
	}
	c.mu.Unlock()
	return nil
}

// Delete removes a reservation row entirely. Unlike Cancel (a status
// transition that preserves history), Delete is for expunging a mistakenly
// created row. An active reservation cannot be deleted; deactivate it
// first.
func (c *ReservationController) Delete(ctx context.Context, id string) error {
	r, err := c.get(ctx, id)
	if err != nil {
		return err
	}
	if r.Status == db.ReservationActive {
		return newError(KindInvalidArgument, "an active reservation must be force-deactivated before it can be deleted", ErrInvalidTransition)
	}
	if err := c.database.DeleteReservation(ctx, id); err != nil {
		return newError(KindUnavailable, "deleting reservation", err)
	}
	return nil
}

// List returns every reservation, ordered by start time.
func (c *ReservationController) List(ctx context.Context) ([]db.Reservation, error) {
	return c.database.ListReservations(ctx)
}

// CheckAdmission reports whether a request from userID, presenting a token
// with isInternal, may be admitted; it returns false when a reservation is
// currently active for another user. Internal tokens bypass the check
// entirely; admin status grants no bypass. A non-internal request from the
// reservation holder's own user_id passes.
func (c *ReservationController) CheckAdmission(userID string, isInternal bool) bool {
	if isInternal {
		return true
	}
	c.mu.RLock()
	active := c.active
	c.mu.RUnlock()
	if active == nil {
		return true
	}
	return active.UserID == userID
}

// ActiveReservation returns the current system-wide active reservation, if
// any.
func (c *ReservationController) ActiveReservation() *db.Reservation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *ReservationController) get(ctx context.Context, id string) (db.Reservation, error) {
	r, err := c.database.GetReservation(ctx, id)
	if err != nil {
		return db.Reservation{}, newError(KindNotFound, "reservation not found", ErrReservationNotFound)
	}
	return r, nil
}

func (c *ReservationController) updateStatus(ctx context.Context, r db.Reservation, to db.ReservationStatus, adminNote string, approvedBy *string) error {
	if err := c.database.UpdateReservationStatus(ctx, r.ID, to, adminNote, approvedBy); err != nil {
		return newError(KindUnavailable, "updating reservation status", err)
	}
	r.Status = to
	if adminNote != "" {
		r.AdminNote = adminNote
	}
	if approvedBy != nil {
		r.ApprovedBy = approvedBy
	}
	c.publish(r)
	return nil
}

// Tick is the idempotent reconciliation pass: it is safe to call on every
// tick interval (every 30 seconds by default) with no cumulative side
// effects beyond the state transitions it actually performs. Each pass,
// in order:
//
//  1. Any active reservation whose end_at has passed becomes completed,
//     clearing the cache if it was the cached one.
//  2. If the cache is now empty, the earliest approved reservation whose
//     window currently contains now becomes active and populates the
//     cache.
//  3. Any pending reservation whose start_at has passed without approval
//     is auto-cancelled with a fixed note.
//  4. Every transition performed above is published to the reservation
//     event broadcaster so subscribers (the dashboard) learn about it
//     immediately rather than polling; admission checks read the updated
//     in-memory cache directly.
func (c *ReservationController) Tick(ctx context.Context) error {
	now := time.Now()
	all, err := c.database.PendingOrApprovedReservations(ctx)
	if err != nil {
		return err
	}

	c.mu.RLock()
	activeID := ""
	if c.active != nil {
		activeID = c.active.ID
	}
	c.mu.RUnlock()

	// Step 1: expire the active reservation, if its window has closed.
	for i := range all {
		r := all[i]
		if r.Status != db.ReservationActive || now.Before(r.EndAt) {
			continue
		}
		if err := c.database.UpdateReservationStatus(ctx, r.ID, db.ReservationCompleted, "", nil); err != nil {
			c.log.WithError(err).Warn("failed to complete reservation")
			continue
		}
		r.Status = db.ReservationCompleted
		if r.ID == activeID {
			c.mu.Lock()
			c.active = nil
			c.mu.Unlock()
			activeID = ""
		}
		c.publish(r)
	}

	// Step 2: if nothing is active, promote the earliest approved window
	// that currently contains now.
	if activeID == "" {
		var earliest *db.Reservation
		for i := range all {
			r := all[i]
			if r.Status != db.ReservationApproved {
				continue
			}
			if now.Before(r.StartAt) || !now.Before(r.EndAt) {
				continue
			}
			if earliest == nil || r.StartAt.Before(earliest.StartAt) {
				cp := r
				earliest = &cp
			}
		}
		if earliest != nil {
			if err := c.database.UpdateReservationStatus(ctx, earliest.ID, db.ReservationActive, "", nil); err != nil {
				c.log.WithError(err).Warn("failed to activate reservation")
			} else {
				earliest.Status = db.ReservationActive
				c.mu.Lock()
				c.active = earliest
				c.mu.Unlock()
				c.publish(*earliest)
			}
		}
	}

	// Step 3: auto-cancel pending reservations whose start time has passed
	// without ever being approved.
	for i := range all {
		r := all[i]
		if r.Status != db.ReservationPending || !now.After(r.StartAt) {
			continue
		}
		if err := c.database.UpdateReservationStatus(ctx, r.ID, db.ReservationCancelled, autoCancelNote, nil); err != nil {
			c.log.WithError(err).Warn("failed to auto-cancel expired pending reservation")
			continue
		}
		r.Status = db.ReservationCancelled
		r.AdminNote = autoCancelNote
		c.publish(r)
	}

	return nil
}

func (c *ReservationController) publish(r db.Reservation) {
	c.events.Publish(ReservationEvent{
		ReservationID: r.ID,
		UserID:        r.UserID,
		Status:        r.Status,
		At:            time.Now(),
	})
}
