// Package scheduler implements the fair-use inference scheduler: fairness
// scoring, per-model priority queues, a bounded concurrency gate, model
// resolution, hot-reloadable settings, usage accounting, and the
// reservation state machine, composed behind a single Scheduler facade.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/fairgate/scheduler/pkg/db"
	"github.com/fairgate/scheduler/pkg/logging"
	"github.com/fairgate/scheduler/pkg/metrics"
)

// reservationTickSchedule runs the reservation reconciliation pass every 30
// seconds, matching the Rust original's tick interval.
const reservationTickSchedule = "@every 30s"

// Scheduler composes the gate, queue, resolver, settings store, usage
// recorder, and reservation controller into the single entry point the
// HTTP layer talks to, mirroring the teacher's pattern of a facade struct
// that owns every collaborator and exposes a small number of high-level
// operations plus a Run(ctx) loop.
type Scheduler struct {
	log      logging.Logger
	database *db.Database

	Gate         *Gate
	Queue        *Queue
	Resolver     *Resolver
	Settings     *SettingsStore
	Usage        *UsageRecorder
	Reservations *ReservationController
	GateEvents   *metrics.Broadcaster[metrics.GateEvent]

	queueTimeout time.Duration
	cron         *cron.Cron
}

// Options configures Scheduler construction.
type Options struct {
	QueueTimeout time.Duration
	// ReservationTickInterval is not read: the reservation tick always runs
	// on reservationTickSchedule (every 30 seconds).
	ReservationTickInterval time.Duration
}

// New constructs a Scheduler and all of its collaborators.
func New(database *db.Database, log logging.Logger, events *metrics.Broadcaster[any], opts Options) *Scheduler {
	settings := NewSettingsStore(database)
	usage := NewUsageRecorder(database, settings, logging.WithComponent(log, "usage"))

	s := &Scheduler{
		log:          log,
		database:     database,
		Gate:         NewGate(),
		Resolver:     NewResolver(database),
		Settings:     settings,
		Usage:        usage,
		Reservations: NewReservationController(database, logging.WithComponent(log, "reservations"), events),
		GateEvents:   metrics.NewBroadcaster[metrics.GateEvent](),
		queueTimeout: opts.QueueTimeout,
		cron:         cron.New(),
	}
	s.Queue = NewQueue(settings.Load, usage.Recent)
	return s
}

// Start performs one-time startup work: loading persisted settings and
// recovering the in-memory active-reservation cache, before Run begins the
// background reconciliation loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Settings.Refresh(ctx); err != nil {
		return newError(KindUnavailable, "loading settings", err)
	}
	if err := s.Reservations.Recover(ctx); err != nil {
		return newError(KindUnavailable, "recovering reservations", err)
	}
	return nil
}

// Run drives the scheduler's background work (the reservation tick loop,
// scheduled via robfig/cron rather than a bare ticker so the interval is
// expressed the same way an operator would read it in a crontab) until ctx
// is cancelled, following the teacher's errgroup.WithContext idiom for
// structured concurrency across the scheduler's goroutines.
func (s *Scheduler) Run(ctx context.Context) error {
	group, groupCtx := errgroup.WithContext(ctx)

	if _, err := s.cron.AddFunc(reservationTickSchedule, func() {
		if err := s.Reservations.Tick(groupCtx); err != nil {
			s.log.WithError(err).Warn("reservation tick failed")
		}
	}); err != nil {
		return newError(KindUnavailable, "scheduling reservation tick", err)
	}

	group.Go(func() error {
		s.cron.Start()
		<-groupCtx.Done()
		<-s.cron.Stop().Done()
		return nil
	})

	return group.Wait()
}

// Admit acquires a gate slot for modelID, queueing and fairness-ordering
// the request against other waiters if no slot is immediately available.
// It blocks until a slot is granted or the queue timeout elapses. On
// success the caller owns the returned Slot and must eventually call
// Release exactly once (directly, or via Scheduler.Release).
//
// userID and isInternal identify the presenting token for the reservation
// admission check (spec'd as system-wide, not per-model): while a
// reservation is active, a non-internal request whose userID differs from
// the holder's is rejected with KindReservationConflict before the gate is
// ever touched. Internal tokens bypass this check entirely.
func (s *Scheduler) Admit(ctx context.Context, modelID, tokenID, userID string, isInternal bool) (*Slot, error) {
	if !s.Reservations.CheckAdmission(userID, isInternal) {
		return nil, newError(KindReservationConflict, "a reservation is currently active for another user", ErrSystemReserved)
	}

	if slot, ok := s.Gate.TryAcquire(modelID); ok {
		s.publishGateEvent(modelID)
		return slot, nil
	}

	req := s.Queue.Enqueue(modelID, tokenID)

	timeout := time.Duration(s.Settings.Load().QueueTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = s.queueTimeout
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slot, err := s.Queue.Wait(waitCtx, req)
	if err != nil {
		return nil, newError(KindQueueTimeout, "timed out waiting for a gate slot", ErrQueueTimeout)
	}
	s.publishGateEvent(modelID)
	return slot, nil
}

// Release returns a slot to the gate, handing it directly to the next
// highest-priority queued waiter for modelID if one exists, or freeing it
// back to the gate's pool otherwise.
func (s *Scheduler) Release(ctx context.Context, modelID string, slot *Slot) {
	if !s.Queue.GrantNext(ctx, modelID, slot) {
		slot.Release()
	}
	s.publishGateEvent(modelID)
}

func (s *Scheduler) publishGateEvent(modelID string) {
	s.GateEvents.Publish(metrics.GateEvent{
		ModelID: modelID,
		InUse:   s.Gate.InUse(modelID),
		Limit:   s.Gate.Limit(modelID),
		At:      time.Now(),
	})
}
