package models

import "time"

// PeriodType classifies a sub-interval of a session.
type PeriodType string

const (
	PeriodPlay   PeriodType = "play"
	PeriodSelect PeriodType = "select"
	PeriodBreak  PeriodType = "break"
)

// Period is a typed sub-interval of a session. An open period (the single
// in-flight period of an active session) has a zero EndTime.
type Period struct {
	Type      PeriodType `json:"type"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime,omitzero"`
}

// Open reports whether the period has not been closed yet.
func (p Period) Open() bool {
	return p.EndTime.IsZero()
}

// Duration returns the period length, zero for open or inverted periods.
func (p Period) Duration() time.Duration {
	if p.Open() || p.EndTime.Before(p.StartTime) {
		return 0
	}
	return p.EndTime.Sub(p.StartTime)
}

// Session is one finalized activity record. The JSON field names match the
// raw-data column written into spreadsheet exports, so stored sessions
// round-trip through export and re-import unchanged.
type Session struct {
	ID               string     `json:"id"`
	OverallStartTime time.Time  `json:"overallStartTime"`
	OverallEndTime   time.Time  `json:"overallEndTime"`
	OverallDuration  int64      `json:"overallDuration"` // whole seconds
	OverallProfit    float64    `json:"overallProfit"`   // placeholder, not computed
	HandsPlayed      int        `json:"handsPlayed"`
	Notes            string     `json:"notes"`
	Periods          []Period   `json:"periods,omitempty"`
}

// Day returns the calendar-day key the session is bucketed under. Sessions
// belong to the day their start time falls on, even when they end past
// midnight.
func (s *Session) Day() string {
	return DayKey(s.OverallStartTime)
}

// RecomputeDuration sets OverallDuration from the overall timestamps,
// flooring to whole seconds and clamping at zero.
func (s *Session) RecomputeDuration() {
	d := s.OverallEndTime.Sub(s.OverallStartTime)
	if d < 0 {
		d = 0
	}
	s.OverallDuration = int64(d / time.Second)
}

// PeriodSeconds returns the summed duration in seconds of all periods of the
// given type.
func (s *Session) PeriodSeconds(t PeriodType) int64 {
	var total time.Duration
	for _, p := range s.Periods {
		if p.Type == t {
			total += p.Duration()
		}
	}
	return int64(total / time.Second)
}

// ActiveSession is the single in-flight, not-yet-finalized session. The last
// period is always open; earlier periods are closed.
type ActiveSession struct {
	OverallStartTime time.Time `json:"overallStartTime"`
	Periods          []Period  `json:"periods"`
}

// CurrentPeriod returns the open period, or false if the snapshot has none
// (which only happens for malformed data).
func (a *ActiveSession) CurrentPeriod() (Period, bool) {
	if len(a.Periods) == 0 {
		return Period{}, false
	}
	last := a.Periods[len(a.Periods)-1]
	if !last.Open() {
		return Period{}, false
	}
	return last, true
}

// DayKey formats an instant as the local calendar-day key used for plan and
// off-day lookups.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
