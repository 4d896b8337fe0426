package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"grindlog/internal/store"
)

// parseDay parses a user-supplied calendar day: "today", "yesterday", or
// yyyy-mm-dd in the local zone.
func parseDay(s string) (time.Time, error) {
	now := time.Now()
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now.AddDate(0, 0, -1)), nil
	}

	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use yyyy-mm-dd, today, yesterday)", s)
	}
	return t, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.Local()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseClock parses "H:MM" or "H MM" into seconds. Used both for durations
// ("4:20" is four hours twenty minutes) and times of day ("18:30").
func parseClock(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time")
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ' ' })
	if len(parts) < 1 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q (use H:MM or H:MM:SS)", s)
	}

	var total int64
	units := []int64{3600, 60, 1}
	for i, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q (use H:MM or H:MM:SS)", s)
		}
		total += n * units[i]
	}
	return total, nil
}

// resolveRange turns the shared --period/--from/--to flags into an inclusive
// day range. "all" spans the stored session collection and needs the store.
func resolveRange(ctx context.Context, s store.Store, period, fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now()

	switch period {
	case "week":
		// Week starts on Monday.
		offset := (int(now.Weekday()) + 6) % 7
		from := startOfDay(now.AddDate(0, 0, -offset))
		return from, from.AddDate(0, 0, 6), nil
	case "month":
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
		return from, from.AddDate(0, 1, -1), nil
	case "all":
		sessions, err := s.ListSessions(ctx)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if len(sessions) == 0 {
			today := startOfDay(now)
			return today, today, nil
		}
		first := startOfDay(sessions[0].OverallStartTime)
		last := startOfDay(sessions[len(sessions)-1].OverallStartTime)
		return first, last, nil
	case "custom":
		if fromStr == "" || toStr == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--period custom requires --from and --to")
		}
		from, err := parseDay(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to, err := parseDay(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to is before --from")
		}
		return from, to, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period: %q (use: week, month, all, custom)", period)
	}
}
