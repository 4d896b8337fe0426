package settings

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"grindlog/internal/models"
	"grindlog/internal/store"
)

// DaySchedule is the planned workload for one weekday of a recurring weekly
// schedule. Off wins over any hours/hands on the same weekday.
type DaySchedule struct {
	Hours float64 `yaml:"hours"`
	Hands int     `yaml:"hands"`
	Off   bool    `yaml:"off"`
}

// Schedule maps weekday names to their plan. Weekdays absent from the
// schedule are left untouched when applied.
type Schedule map[string]DaySchedule

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseSchedule reads a YAML weekly schedule.
func ParseSchedule(data []byte) (Schedule, error) {
	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	for name := range s {
		if _, ok := weekdayNames[name]; !ok {
			return nil, fmt.Errorf("unknown weekday: %q", name)
		}
	}
	return s, nil
}

// ApplySchedule stamps the weekly schedule onto every day of [from, to]. Off
// weekdays set the off-day flag and clear any stored plan; scheduled
// weekdays clear the flag and store the plan.
func ApplySchedule(ctx context.Context, st store.Store, from, to time.Time, s Schedule) error {
	byWeekday := make(map[time.Weekday]DaySchedule)
	for name, day := range s {
		byWeekday[weekdayNames[name]] = day
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, to.Location())
	if end.Before(start) {
		return fmt.Errorf("schedule range ends before it starts")
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		sched, ok := byWeekday[day.Weekday()]
		if !ok {
			continue
		}
		date := models.DayKey(day)

		if sched.Off {
			if err := st.SetOffDay(ctx, date, true); err != nil {
				return err
			}
			if err := st.SetPlan(ctx, date, models.Plan{}); err != nil {
				return err
			}
			continue
		}

		if err := st.SetOffDay(ctx, date, false); err != nil {
			return err
		}
		if err := st.SetPlan(ctx, date, models.Plan{Hours: sched.Hours, Hands: sched.Hands}); err != nil {
			return err
		}
	}
	return nil
}
