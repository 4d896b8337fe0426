package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grindlog/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func session(start time.Time, playSeconds, selectSeconds int64, hands int, notes string) *models.Session {
	playEnd := start.Add(time.Duration(playSeconds) * time.Second)
	end := playEnd.Add(time.Duration(selectSeconds) * time.Second)
	s := &models.Session{
		ID:               start.Format("20060102150405"),
		OverallStartTime: start,
		OverallEndTime:   end,
		HandsPlayed:      hands,
		Notes:            notes,
		Periods: []models.Period{
			{Type: models.PeriodPlay, StartTime: start, EndTime: playEnd},
			{Type: models.PeriodSelect, StartTime: playEnd, EndTime: end},
		},
	}
	s.RecomputeDuration()
	return s
}

func TestSummarize_CalendarComplete(t *testing.T) {
	from := day(2024, 3, 1)
	to := day(2024, 3, 7)

	sessions := []*models.Session{
		session(from.Add(10*time.Hour), 3600, 0, 500, ""),
	}

	rows := Summarize(from, to, sessions, nil, nil, Options{})
	require.Len(t, rows, 7, "every day of the range gets a row")

	assert.Equal(t, "2024-03-01", rows[0].Key)
	assert.Equal(t, "2024-03-07", rows[6].Key)
	assert.True(t, rows[0].HasSessions())
	for _, row := range rows[1:] {
		assert.False(t, row.HasSessions())
	}
}

func TestSummarize_Descending(t *testing.T) {
	rows := Summarize(day(2024, 3, 1), day(2024, 3, 3), nil, nil, nil, Options{Descending: true})
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-03-03", rows[0].Key)
	assert.Equal(t, "2024-03-01", rows[2].Key)
}

func TestSummarize_InvertedRange(t *testing.T) {
	rows := Summarize(day(2024, 3, 3), day(2024, 3, 1), nil, nil, nil, Options{})
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-03-01", rows[0].Key)
}

func TestSummarize_MultipleSessionsPerDay(t *testing.T) {
	d := day(2024, 3, 10)
	sessions := []*models.Session{
		session(d.Add(19*time.Hour), 3600, 600, 700, "evening"),
		session(d.Add(9*time.Hour), 7200, 1800, 1300, "morning"),
	}

	rows := Summarize(d, d, sessions, nil, nil, Options{})
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, 2, row.SessionCount)
	assert.Equal(t, int64(3600+600+7200+1800), row.TotalSeconds)
	assert.Equal(t, int64(10800), row.PlaySeconds)
	assert.Equal(t, int64(2400), row.SelectSeconds)
	assert.Equal(t, 2000, row.HandsPlayed)
	// 2000 hands over 3 play hours, rounded
	assert.Equal(t, 667, row.HandsPerHour)
	// Notes joined in start-time order
	assert.Equal(t, "morning; evening", row.Notes)
	// Sessions sorted ascending within the day
	require.Len(t, row.Sessions, 2)
	assert.Equal(t, "morning", row.Sessions[0].Notes)
}

func TestSummarize_SessionPastMidnightStaysOnStartDay(t *testing.T) {
	d := day(2024, 3, 10)
	// 23:00 to 01:00 next day
	s := session(d.Add(23*time.Hour), 7200, 0, 0, "")

	rows := Summarize(d, d.AddDate(0, 0, 1), []*models.Session{s}, nil, nil, Options{})
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].SessionCount)
	assert.Equal(t, 0, rows[1].SessionCount)
}

func TestSummarize_PlanRemaining(t *testing.T) {
	d := day(2024, 3, 10)
	key := d.Format("2006-01-02")

	// 6 hour plan, 4 hours played, 2 hours remain
	sessions := []*models.Session{session(d.Add(10*time.Hour), 4*3600, 0, 0, "")}
	plans := map[string]models.Plan{key: {Hours: 6, Hands: 1500}}

	rows := Summarize(d, d, sessions, plans, nil, Options{})
	require.Len(t, rows, 1)
	row := rows[0]

	assert.True(t, row.HasPlan)
	assert.Equal(t, 6.0, row.PlanHours)
	assert.Equal(t, 1500, row.PlanHands)
	assert.Equal(t, int64(2*3600), row.PlanRemainingSeconds)

	// All three renderings of the same remainder
	assert.Equal(t, "2ч", FormatRemaining(row.PlanRemainingSeconds, RemainingHours))
	assert.Equal(t, "2ч 0мин", FormatRemaining(row.PlanRemainingSeconds, RemainingHM))
	assert.Equal(t, "02:00:00", FormatRemaining(row.PlanRemainingSeconds, RemainingClock))
}

func TestSummarize_PlanOverfilled(t *testing.T) {
	d := day(2024, 3, 10)
	key := d.Format("2006-01-02")

	sessions := []*models.Session{session(d.Add(10*time.Hour), 7*3600, 0, 0, "")}
	plans := map[string]models.Plan{key: {Hours: 6}}

	rows := Summarize(d, d, sessions, plans, nil, Options{})
	assert.Equal(t, int64(0), rows[0].PlanRemainingSeconds, "remaining clamps at zero")
}

func TestSummarize_OffDaySuppressesRemaining(t *testing.T) {
	d := day(2024, 3, 10)
	key := d.Format("2006-01-02")

	plans := map[string]models.Plan{key: {Hours: 6}}
	offDays := map[string]bool{key: true}

	rows := Summarize(d, d, nil, plans, offDays, Options{})
	row := rows[0]

	assert.True(t, row.OffDay)
	// The stored plan is still visible but its remainder is suppressed
	assert.True(t, row.HasPlan)
	assert.Equal(t, int64(0), row.PlanRemainingSeconds)
}

func TestSummarize_OffDayKeepsActuals(t *testing.T) {
	d := day(2024, 3, 10)
	key := d.Format("2006-01-02")

	sessions := []*models.Session{session(d.Add(10*time.Hour), 3600, 0, 400, "")}
	offDays := map[string]bool{key: true}

	rows := Summarize(d, d, sessions, nil, offDays, Options{})
	row := rows[0]

	// Playing on an off day still counts
	assert.Equal(t, int64(3600), row.PlaySeconds)
	assert.Equal(t, 400, row.HandsPlayed)
}

func TestSum_TotalsRules(t *testing.T) {
	d1 := day(2024, 3, 10)
	d2 := day(2024, 3, 11) // off day with a plan
	d3 := day(2024, 3, 12) // planned, not played

	k1 := d1.Format("2006-01-02")
	k2 := d2.Format("2006-01-02")
	k3 := d3.Format("2006-01-02")

	sessions := []*models.Session{
		session(d1.Add(10*time.Hour), 2*3600, 1800, 1200, ""),
		session(d2.Add(10*time.Hour), 3600, 0, 300, ""),
	}
	plans := map[string]models.Plan{
		k1: {Hours: 4, Hands: 1000},
		k2: {Hours: 6, Hands: 1500},
		k3: {Hours: 5, Hands: 800},
	}
	offDays := map[string]bool{k2: true}

	rows := Summarize(d1, d3, sessions, plans, offDays, Options{})
	totals := Sum(rows)

	// Actuals sum over every day with sessions, off-day included
	assert.Equal(t, 2, totals.ActiveDays)
	assert.Equal(t, 2, totals.SessionCount)
	assert.Equal(t, int64(3*3600+1800), totals.PlaySeconds)
	assert.Equal(t, 1500, totals.HandsPlayed)

	// Plan figures skip the off day
	assert.Equal(t, 9.0, totals.PlanHours)
	assert.Equal(t, 1800, totals.PlanHands)

	// Remaining: day1 4h-2h=2h, day3 5h untouched; off day contributes nothing
	assert.Equal(t, int64(7*3600), totals.PlanRemainingSeconds)

	// Mean of per-day hands/hour over days with play: (600 + 300) / 2
	assert.Equal(t, 450, totals.AvgHandsPerHour)
}

func TestSum_Empty(t *testing.T) {
	totals := Sum(nil)
	assert.Equal(t, 0, totals.ActiveDays)
	assert.Equal(t, 0, totals.AvgHandsPerHour)
}
