package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grindlog/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	err = s.Migrate(context.Background())
	require.NoError(t, err)

	t.Cleanup(func() { s.Close() })
	return s
}

func testSession(start time.Time, playSeconds, selectSeconds int64) *models.Session {
	playEnd := start.Add(time.Duration(playSeconds) * time.Second)
	end := playEnd.Add(time.Duration(selectSeconds) * time.Second)
	s := &models.Session{
		ID:               NewULID(),
		OverallStartTime: start,
		OverallEndTime:   end,
		HandsPlayed:      100,
		Notes:            "test session",
		Periods: []models.Period{
			{Type: models.PeriodPlay, StartTime: start, EndTime: playEnd},
			{Type: models.PeriodSelect, StartTime: playEnd, EndTime: end},
		},
	}
	s.RecomputeDuration()
	return s
}

func TestNewSQLiteStore_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "subdir", "test.db")

	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(dir, "subdir"))
	assert.NoError(t, err, "should create parent directory")
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Running migrate again should be a no-op
	err := s.Migrate(ctx)
	assert.NoError(t, err)
}

// --- Session CRUD ---

func TestSessionCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 10, 18, 0, 0, 0, time.Local)
	sess := testSession(start, 3600, 1800)

	err := s.CreateSession(ctx, sess)
	require.NoError(t, err)

	got, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.True(t, got.OverallStartTime.Equal(sess.OverallStartTime))
	assert.Equal(t, int64(5400), got.OverallDuration)
	assert.Equal(t, 100, got.HandsPlayed)
	assert.Equal(t, "test session", got.Notes)
	require.Len(t, got.Periods, 2)
	assert.Equal(t, models.PeriodPlay, got.Periods[0].Type)
	assert.Equal(t, int64(3600), got.PeriodSeconds(models.PeriodPlay))
	assert.Equal(t, int64(1800), got.PeriodSeconds(models.PeriodSelect))

	got.HandsPlayed = 250
	got.Notes = "edited"
	err = s.UpdateSession(ctx, got)
	require.NoError(t, err)

	got2, err := s.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 250, got2.HandsPlayed)
	assert.Equal(t, "edited", got2.Notes)

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	err = s.DeleteSession(ctx, sess.ID)
	require.NoError(t, err)

	_, err = s.GetSession(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSession_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSession_NotFound(t *testing.T) {
	s := newTestStore(t)

	sess := testSession(time.Now(), 60, 0)
	err := s.UpdateSession(context.Background(), sess)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSessionsBetween(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day1 := time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)
	day2 := time.Date(2024, 3, 11, 12, 0, 0, 0, time.Local)
	day3 := time.Date(2024, 3, 12, 12, 0, 0, 0, time.Local)
	for _, start := range []time.Time{day1, day2, day3} {
		require.NoError(t, s.CreateSession(ctx, testSession(start, 600, 0)))
	}

	from := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local)
	sessions, err := s.ListSessionsBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].OverallStartTime.Equal(day2))
}

func TestImportSessions_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testSession(time.Date(2024, 3, 10, 10, 0, 0, 0, time.Local), 600, 0)
	b := testSession(time.Date(2024, 3, 10, 14, 0, 0, 0, time.Local), 600, 0)

	added, err := s.ImportSessions(ctx, []*models.Session{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Same batch again adds nothing; existing records win on id collision.
	modified := *a
	modified.Notes = "changed"
	added, err = s.ImportSessions(ctx, []*models.Session{&modified, b})
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	got, err := s.GetSession(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "test session", got.Notes, "existing record should win")

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

// --- Plans ---

func TestPlanSetGetDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.SetPlan(ctx, "2024-03-10", models.Plan{Hours: 6, Hands: 1500})
	require.NoError(t, err)

	p, ok, err := s.GetPlan(ctx, "2024-03-10")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 6.0, p.Hours)
	assert.Equal(t, 1500, p.Hands)

	// Upsert
	err = s.SetPlan(ctx, "2024-03-10", models.Plan{Hours: 4})
	require.NoError(t, err)
	p, ok, err = s.GetPlan(ctx, "2024-03-10")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4.0, p.Hours)
	assert.Equal(t, 0, p.Hands)

	// Zero plan deletes the row
	err = s.SetPlan(ctx, "2024-03-10", models.Plan{})
	require.NoError(t, err)
	_, ok, err = s.GetPlan(ctx, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListPlans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPlan(ctx, "2024-03-10", models.Plan{Hours: 6}))
	require.NoError(t, s.SetPlan(ctx, "2024-03-11", models.Plan{Hands: 1000}))

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	assert.Len(t, plans, 2)
	assert.Equal(t, 6.0, plans["2024-03-10"].Hours)
	assert.Equal(t, 1000, plans["2024-03-11"].Hands)
}

// --- Off days ---

func TestOffDays(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	off, err := s.IsOffDay(ctx, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, off)

	require.NoError(t, s.SetOffDay(ctx, "2024-03-10", true))
	// Setting twice is fine
	require.NoError(t, s.SetOffDay(ctx, "2024-03-10", true))

	off, err = s.IsOffDay(ctx, "2024-03-10")
	require.NoError(t, err)
	assert.True(t, off)

	offDays, err := s.ListOffDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2024-03-10": true}, offDays)

	require.NoError(t, s.SetOffDay(ctx, "2024-03-10", false))
	off, err = s.IsOffDay(ctx, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, off)
}

// --- Active session snapshot ---

func TestActiveSessionRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetActiveSession(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	start := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	a := &models.ActiveSession{
		OverallStartTime: start,
		Periods: []models.Period{
			{Type: models.PeriodSelect, StartTime: start},
		},
	}
	require.NoError(t, s.PutActiveSession(ctx, a))

	got, err := s.GetActiveSession(ctx)
	require.NoError(t, err)
	assert.True(t, got.OverallStartTime.Equal(start))
	p, ok := got.CurrentPeriod()
	require.True(t, ok)
	assert.Equal(t, models.PeriodSelect, p.Type)

	// Overwrite keeps the singleton row
	a.Periods[0].EndTime = start.Add(time.Minute)
	a.Periods = append(a.Periods, models.Period{Type: models.PeriodPlay, StartTime: start.Add(time.Minute)})
	require.NoError(t, s.PutActiveSession(ctx, a))
	got, err = s.GetActiveSession(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Periods, 2)

	require.NoError(t, s.ClearActiveSession(ctx))
	_, err = s.GetActiveSession(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	// Clearing an already clear snapshot is fine
	assert.NoError(t, s.ClearActiveSession(ctx))
}

func TestGetActiveSession_Corrupt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO active_session (id, snapshot) VALUES (1, ?)`, "{not json")
	require.NoError(t, err)

	_, err = s.GetActiveSession(ctx)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestGetActiveSession_MissingStartTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO active_session (id, snapshot) VALUES (1, ?)`, `{"periods":[]}`)
	require.NoError(t, err)

	_, err = s.GetActiveSession(ctx)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
}

// --- Planning replace / reset ---

func TestReplacePlanning(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetPlan(ctx, "2024-03-10", models.Plan{Hours: 6}))
	require.NoError(t, s.SetOffDay(ctx, "2024-03-11", true))

	err := s.ReplacePlanning(ctx,
		map[string]models.Plan{"2024-04-01": {Hours: 8, Hands: 2000}},
		map[string]bool{"2024-04-02": true},
	)
	require.NoError(t, err)

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]models.Plan{"2024-04-01": {Hours: 8, Hands: 2000}}, plans)

	offDays, err := s.ListOffDays(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"2024-04-02": true}, offDays)
}

func TestResetAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, testSession(time.Now(), 600, 0)))
	require.NoError(t, s.SetPlan(ctx, "2024-03-10", models.Plan{Hours: 6}))
	require.NoError(t, s.SetOffDay(ctx, "2024-03-11", true))
	require.NoError(t, s.PutActiveSession(ctx, &models.ActiveSession{
		OverallStartTime: time.Now(),
		Periods:          []models.Period{{Type: models.PeriodPlay, StartTime: time.Now()}},
	}))

	require.NoError(t, s.ResetAll(ctx))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	plans, err := s.ListPlans(ctx)
	require.NoError(t, err)
	assert.Empty(t, plans)

	_, err = s.GetActiveSession(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}
