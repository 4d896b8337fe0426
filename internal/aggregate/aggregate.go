// Package aggregate turns the flat session collection into per-calendar-day
// summaries reconciled against plans and off-day flags. Summaries are
// derived fresh on every call and never persisted.
package aggregate

import (
	"math"
	"sort"
	"strings"
	"time"

	"grindlog/internal/models"
)

// Options controls row ordering of a summary request.
type Options struct {
	Descending bool
}

// DaySummary is one derived row per calendar day of a requested range. Raw
// numeric fields are always computed, off-day or not; presentation decides
// what to suppress.
type DaySummary struct {
	Date time.Time
	Key  string // yyyy-mm-dd

	SessionCount  int
	TotalSeconds  int64
	PlaySeconds   int64
	SelectSeconds int64
	HandsPlayed   int
	HandsPerHour  int
	Notes         string

	PlanHours            float64
	PlanHands            int
	HasPlan              bool
	PlanRemainingSeconds int64 // zero when off-day or no hour plan

	OffDay   bool
	Sessions []*models.Session
}

// HasSessions reports whether any session started on this day.
func (d DaySummary) HasSessions() bool {
	return d.SessionCount > 0
}

// Summarize produces one DaySummary per calendar day in [from, to],
// inclusive at day granularity. Days without sessions still get a row, so a
// requested range always yields a calendar-complete result. Sessions are
// bucketed by the day their start time falls on; a session spilling past
// midnight stays entirely under its start day.
func Summarize(from, to time.Time, sessions []*models.Session, plans map[string]models.Plan, offDays map[string]bool, opts Options) []DaySummary {
	start := startOfDay(from)
	end := startOfDay(to)
	if end.Before(start) {
		start, end = end, start
	}

	byDay := make(map[string][]*models.Session)
	for _, s := range sessions {
		key := s.Day()
		byDay[key] = append(byDay[key], s)
	}

	var rows []DaySummary
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		rows = append(rows, summarizeDay(day, key, byDay[key], plans[key], offDays[key]))
	}

	if opts.Descending {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows
}

func summarizeDay(day time.Time, key string, sessions []*models.Session, plan models.Plan, offDay bool) DaySummary {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].OverallStartTime.Before(sessions[j].OverallStartTime)
	})

	row := DaySummary{
		Date:     day,
		Key:      key,
		OffDay:   offDay,
		Sessions: sessions,
	}

	var notes []string
	for _, s := range sessions {
		row.SessionCount++
		row.TotalSeconds += spanSeconds(s.OverallStartTime, s.OverallEndTime)
		row.PlaySeconds += s.PeriodSeconds(models.PeriodPlay)
		row.SelectSeconds += s.PeriodSeconds(models.PeriodSelect)
		row.HandsPlayed += s.HandsPlayed
		if s.Notes != "" {
			notes = append(notes, s.Notes)
		}
	}
	row.Notes = strings.Join(notes, "; ")
	row.HandsPerHour = handsPerHour(row.HandsPlayed, row.PlaySeconds)

	if !plan.IsZero() {
		row.HasPlan = true
		row.PlanHours = plan.Hours
		row.PlanHands = plan.Hands
	}
	// Off days suppress plan-remaining regardless of any stored plan.
	if !offDay && plan.Hours > 0 {
		remaining := int64(plan.Hours*3600) - row.PlaySeconds
		if remaining < 0 {
			remaining = 0
		}
		row.PlanRemainingSeconds = remaining
	}
	return row
}

func spanSeconds(start, end time.Time) int64 {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

func handsPerHour(hands int, playSeconds int64) int {
	if playSeconds <= 0 {
		return 0
	}
	return int(math.Round(float64(hands) / (float64(playSeconds) / 3600)))
}

// Totals is the footer row across a range of day summaries.
type Totals struct {
	ActiveDays   int // days with at least one session
	SessionCount int

	TotalSeconds  int64
	PlaySeconds   int64
	SelectSeconds int64
	HandsPlayed   int

	PlanHours            float64
	PlanHands            int
	PlanRemainingSeconds int64

	// AvgHandsPerHour is the mean of per-day hands-per-hour values over
	// days with nonzero play time, so one very long day cannot dominate.
	AvgHandsPerHour int
}

// Sum computes the footer row. Actual-play figures sum across every day with
// at least one session, off-day or not; plan figures only sum across days
// not flagged off.
func Sum(rows []DaySummary) Totals {
	var t Totals
	var perHourSum, perHourDays int

	for _, row := range rows {
		if row.HasSessions() {
			t.ActiveDays++
			t.SessionCount += row.SessionCount
			t.TotalSeconds += row.TotalSeconds
			t.PlaySeconds += row.PlaySeconds
			t.SelectSeconds += row.SelectSeconds
			t.HandsPlayed += row.HandsPlayed
		}
		if !row.OffDay {
			t.PlanHours += row.PlanHours
			t.PlanHands += row.PlanHands
			t.PlanRemainingSeconds += row.PlanRemainingSeconds
		}
		if row.PlaySeconds > 0 {
			perHourSum += row.HandsPerHour
			perHourDays++
		}
	}

	if perHourDays > 0 {
		t.AvgHandsPerHour = int(math.Round(float64(perHourSum) / float64(perHourDays)))
	}
	return t
}

func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
