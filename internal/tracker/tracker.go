// Package tracker owns the session lifecycle state machine: Idle until a
// session starts, Running while one is in flight, back to Idle on stop. At
// most one session is in flight per process, mirrored by the singleton
// snapshot key in the store.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"grindlog/internal/clock"
	"grindlog/internal/models"
	"grindlog/internal/store"
)

var (
	// ErrAlreadyRunning is returned by Start while a session is in flight.
	ErrAlreadyRunning = errors.New("a session is already running")
	// ErrNotRunning is returned by Stop and Toggle while idle.
	ErrNotRunning = errors.New("no session is running")
)

// Tracker is the session lifecycle engine. All transitions are invoked
// serially by the controlling process; the mutex only guards against the
// internal ticker goroutine observing a half-applied transition.
type Tracker struct {
	store        store.Store
	clock        clock.Clock
	splitPeriods bool

	mu         sync.Mutex
	active     *models.ActiveSession
	cancelTick context.CancelFunc

	// ticks is the presentation-only elapsed counter driven by the
	// one-second tick. Durations are always recomputed from timestamps;
	// this value never feeds a stored record.
	ticks atomic.Int64
}

// New creates a Tracker in the Idle state. Call Recover to resume a
// persisted in-flight session.
func New(s store.Store, c clock.Clock, splitPeriods bool) *Tracker {
	return &Tracker{store: s, clock: c, splitPeriods: splitPeriods}
}

// now reads the clock, degrading to the local wall clock on failure. A clock
// failure never aborts a transition.
func (t *Tracker) now(ctx context.Context) time.Time {
	ts, err := t.clock.Now(ctx)
	if err != nil {
		slog.Warn("clock read failed, using local wall clock", "error", err)
		return time.Now()
	}
	return ts
}

// Running reports whether a session is in flight.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active != nil
}

// CurrentPeriodType returns the type of the open period, or false when idle.
func (t *Tracker) CurrentPeriodType() (models.PeriodType, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return "", false
	}
	p, ok := t.active.CurrentPeriod()
	if !ok {
		return "", false
	}
	return p.Type, true
}

// StartTime returns the overall start time of the in-flight session, or
// false when idle.
func (t *Tracker) StartTime() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return time.Time{}, false
	}
	return t.active.OverallStartTime, true
}

// Start begins a new session. The initial period is select when period
// splitting is enabled, play otherwise. Returns ErrAlreadyRunning if a
// session is in flight; the existing session is left untouched.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return ErrAlreadyRunning
	}

	initialType := models.PeriodPlay
	if t.splitPeriods {
		initialType = models.PeriodSelect
	}

	t0 := t.now(ctx)
	t.active = &models.ActiveSession{
		OverallStartTime: t0,
		Periods: []models.Period{
			{Type: initialType, StartTime: t0},
		},
	}

	t.persistSnapshotLocked(ctx)
	t.ticks.Store(0)
	t.startTickLocked()
	return nil
}

// Toggle closes the open period and opens a new one of the given type. It is
// a no-op when the type is unchanged or period splitting is disabled, and
// returns ErrNotRunning while idle.
func (t *Tracker) Toggle(ctx context.Context, newType models.PeriodType) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return ErrNotRunning
	}
	if !t.splitPeriods {
		return nil
	}
	current, ok := t.active.CurrentPeriod()
	if !ok {
		return fmt.Errorf("active session has no open period")
	}
	if current.Type == newType {
		return nil
	}

	t1 := t.now(ctx)
	t.active.Periods[len(t.active.Periods)-1].EndTime = t1
	t.active.Periods = append(t.active.Periods, models.Period{Type: newType, StartTime: t1})

	t.persistSnapshotLocked(ctx)
	return nil
}

// Stop closes the open period, finalizes the session, and persists it. The
// returned session has placeholder hands/notes; it already exists in the
// store, so filling those in later is an update, not an insert. Returns
// ErrNotRunning while idle. If the session cannot be durably recorded the
// tracker stays Running and the error is returned.
func (t *Tracker) Stop(ctx context.Context) (*models.Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return nil, ErrNotRunning
	}

	t2 := t.now(ctx)
	t.active.Periods[len(t.active.Periods)-1].EndTime = t2

	sess := &models.Session{
		ID:               store.NewULID(),
		OverallStartTime: t.active.OverallStartTime,
		OverallEndTime:   t2,
		HandsPlayed:      0,
		Notes:            "",
	}
	sess.RecomputeDuration()
	if t.splitPeriods {
		sess.Periods = append([]models.Period(nil), t.active.Periods...)
	}

	// Finalization must be durable before the transition resolves.
	if err := t.store.CreateSession(ctx, sess); err != nil {
		t.active.Periods[len(t.active.Periods)-1].EndTime = time.Time{}
		return nil, fmt.Errorf("record session: %w", err)
	}

	if err := t.store.ClearActiveSession(ctx); err != nil {
		slog.Warn("clear active session snapshot failed", "error", err)
	}
	t.active = nil
	t.stopTickLocked()
	t.ticks.Store(0)
	return sess, nil
}

// Recover restores the in-flight session from the persisted snapshot. A
// missing snapshot leaves the tracker Idle; a corrupt one is discarded with
// a warning, never a failure.
func (t *Tracker) Recover(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return ErrAlreadyRunning
	}

	a, err := t.store.GetActiveSession(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case errors.Is(err, store.ErrCorruptSnapshot):
		slog.Warn("discarding corrupt active session snapshot", "error", err)
		if clearErr := t.store.ClearActiveSession(ctx); clearErr != nil {
			slog.Warn("clear corrupt snapshot failed", "error", clearErr)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read active session snapshot: %w", err)
	}

	if _, ok := a.CurrentPeriod(); !ok {
		slog.Warn("discarding snapshot without an open period")
		if clearErr := t.store.ClearActiveSession(ctx); clearErr != nil {
			slog.Warn("clear malformed snapshot failed", "error", clearErr)
		}
		return nil
	}

	t.active = a
	// Never trust a previously computed elapsed value.
	t.ticks.Store(int64(t.now(ctx).Sub(a.OverallStartTime) / time.Second))
	t.startTickLocked()
	return nil
}

// Elapsed recomputes the running time from the wall clock. Returns false
// while idle.
func (t *Tracker) Elapsed(now time.Time) (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active == nil {
		return 0, false
	}
	d := now.Sub(t.active.OverallStartTime)
	if d < 0 {
		d = 0
	}
	return d, true
}

// Ticks returns the presentation elapsed counter in seconds.
func (t *Tracker) Ticks() int64 {
	return t.ticks.Load()
}

// Close cancels the ticker. Safe to call in any state; must run on process
// teardown so a stale tick cannot fire after the tracker is gone.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTickLocked()
}

// persistSnapshotLocked writes the snapshot best-effort. Losing the latest
// period boundary on a hard crash is acceptable; failing the transition over
// it is not.
func (t *Tracker) persistSnapshotLocked(ctx context.Context) {
	if err := t.store.PutActiveSession(ctx, t.active); err != nil {
		slog.Warn("persist active session snapshot failed", "error", err)
	}
}

func (t *Tracker) startTickLocked() {
	if t.cancelTick != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancelTick = cancel
	go t.tickLoop(ctx)
}

func (t *Tracker) stopTickLocked() {
	if t.cancelTick != nil {
		t.cancelTick()
		t.cancelTick = nil
	}
}

func (t *Tracker) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.ticks.Add(1)
		}
	}
}

// Follow invokes fn once per second with the recomputed elapsed time and the
// current period type, until ctx is cancelled or the tracker goes idle.
func (t *Tracker) Follow(ctx context.Context, fn func(elapsed time.Duration, period models.PeriodType)) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			period, ok := t.CurrentPeriodType()
			if !ok {
				return nil
			}
			elapsed, _ := t.Elapsed(time.Now())
			fn(elapsed, period)
		}
	}
}
