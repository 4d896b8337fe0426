// Package clock abstracts the time source for session transitions so the
// tracker can run against a remote authoritative clock, the local wall
// clock, or a fixed clock in tests.
package clock

import (
	"context"
	"log/slog"
	"time"
)

// Clock supplies the current instant. Implementations may block on I/O and
// should honor ctx cancellation.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// System reads the local wall clock. It never fails.
type System struct{}

func (System) Now(context.Context) (time.Time, error) {
	return time.Now(), nil
}

// Fallback reads from Primary and degrades to the local wall clock when the
// read fails. A clock failure must never abort a session transition.
type Fallback struct {
	Primary Clock
}

func (f Fallback) Now(ctx context.Context) (time.Time, error) {
	t, err := f.Primary.Now(ctx)
	if err != nil {
		slog.Warn("clock read failed, using local wall clock", "error", err)
		return time.Now(), nil
	}
	return t, nil
}

// Fixed always returns the same instant. Test helper.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now(context.Context) (time.Time, error) {
	return f.T, nil
}
