package store

import (
	"context"
	"errors"
	"time"

	"grindlog/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrCorruptSnapshot is returned when the persisted active-session snapshot
// cannot be decoded. Callers are expected to discard it and continue.
var ErrCorruptSnapshot = errors.New("corrupt active session snapshot")

// Store defines the persistence interface for grindlog. Sessions are always
// listed in ascending overallStartTime order.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context) ([]*models.Session, error)
	ListSessionsBetween(ctx context.Context, from, to time.Time) ([]*models.Session, error)
	UpdateSession(ctx context.Context, s *models.Session) error
	DeleteSession(ctx context.Context, id string) error
	// ImportSessions merges a batch of externally supplied sessions.
	// Candidates whose id already exists are dropped (the stored record
	// wins); the number of newly added sessions is returned. Importing the
	// same batch twice is a no-op the second time.
	ImportSessions(ctx context.Context, candidates []*models.Session) (int, error)

	// Plans, keyed by models.DayKey date strings. Setting a zero plan
	// deletes the entry.
	SetPlan(ctx context.Context, date string, p models.Plan) error
	GetPlan(ctx context.Context, date string) (models.Plan, bool, error)
	ListPlans(ctx context.Context) (map[string]models.Plan, error)

	// Off days
	SetOffDay(ctx context.Context, date string, off bool) error
	IsOffDay(ctx context.Context, date string) (bool, error)
	ListOffDays(ctx context.Context) (map[string]bool, error)

	// Active session snapshot (singleton). GetActiveSession returns
	// ErrNotFound when no session is in flight and ErrCorruptSnapshot when
	// the stored value cannot be decoded.
	PutActiveSession(ctx context.Context, a *models.ActiveSession) error
	GetActiveSession(ctx context.Context) (*models.ActiveSession, error)
	ClearActiveSession(ctx context.Context) error

	// ReplacePlanning swaps the full plan and off-day tables, used by
	// settings import (whole-document replace).
	ReplacePlanning(ctx context.Context, plans map[string]models.Plan, offDays map[string]bool) error

	// ResetAll deletes every session, plan, off-day flag, and snapshot.
	ResetAll(ctx context.Context) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
