package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grindlog/internal/models"
	"grindlog/internal/store"
)

func TestParseSchedule(t *testing.T) {
	data := []byte(`
monday:
  hours: 6
  hands: 1500
sunday:
  off: true
`)
	s, err := ParseSchedule(data)
	require.NoError(t, err)
	assert.Equal(t, DaySchedule{Hours: 6, Hands: 1500}, s["monday"])
	assert.True(t, s["sunday"].Off)
}

func TestParseSchedule_UnknownWeekday(t *testing.T) {
	_, err := ParseSchedule([]byte("someday:\n  hours: 2\n"))
	assert.Error(t, err)
}

func TestParseSchedule_BadYAML(t *testing.T) {
	_, err := ParseSchedule([]byte("monday: ["))
	assert.Error(t, err)
}

func TestApplySchedule(t *testing.T) {
	m := store.NewMemoryStore()
	ctx := context.Background()

	s := Schedule{
		"monday": {Hours: 6, Hands: 1500},
		"sunday": {Off: true},
	}

	// 2024-03-11 is a Monday, 2024-03-17 a Sunday
	from := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 3, 17, 0, 0, 0, 0, time.Local)
	require.NoError(t, ApplySchedule(ctx, m, from, to, s))

	p, ok, err := m.GetPlan(ctx, "2024-03-11")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Plan{Hours: 6, Hands: 1500}, p)

	off, err := m.IsOffDay(ctx, "2024-03-17")
	require.NoError(t, err)
	assert.True(t, off)

	// Weekdays absent from the schedule are left untouched
	_, ok, err = m.GetPlan(ctx, "2024-03-12")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApplySchedule_OffClearsPlan(t *testing.T) {
	m := store.NewMemoryStore()
	ctx := context.Background()

	// A stale plan on a day the schedule marks off
	require.NoError(t, m.SetPlan(ctx, "2024-03-17", models.Plan{Hours: 8}))

	s := Schedule{"sunday": {Off: true}}
	day := time.Date(2024, 3, 17, 0, 0, 0, 0, time.Local)
	require.NoError(t, ApplySchedule(ctx, m, day, day, s))

	_, ok, err := m.GetPlan(ctx, "2024-03-17")
	require.NoError(t, err)
	assert.False(t, ok, "off day clears the stored plan")

	off, err := m.IsOffDay(ctx, "2024-03-17")
	require.NoError(t, err)
	assert.True(t, off)
}

func TestApplySchedule_ScheduledClearsOffFlag(t *testing.T) {
	m := store.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.SetOffDay(ctx, "2024-03-11", true))

	s := Schedule{"monday": {Hours: 4}}
	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)
	require.NoError(t, ApplySchedule(ctx, m, day, day, s))

	off, err := m.IsOffDay(ctx, "2024-03-11")
	require.NoError(t, err)
	assert.False(t, off)
}

func TestApplySchedule_InvertedRange(t *testing.T) {
	m := store.NewMemoryStore()
	from := time.Date(2024, 3, 17, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)

	err := ApplySchedule(context.Background(), m, from, to, Schedule{})
	assert.Error(t, err)
}
