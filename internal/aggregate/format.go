package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RemainingFormat selects one of the three textual renderings of a
// plan-remaining second count.
type RemainingFormat string

const (
	RemainingHours RemainingFormat = "h"   // 2ч
	RemainingHM    RemainingFormat = "hm"  // 2ч 0мин
	RemainingClock RemainingFormat = "hms" // 02:00:00
)

// ParseRemainingFormat validates a user-supplied format name.
func ParseRemainingFormat(s string) (RemainingFormat, error) {
	switch RemainingFormat(s) {
	case RemainingHours, RemainingHM, RemainingClock:
		return RemainingFormat(s), nil
	}
	return "", fmt.Errorf("unknown remaining format: %q (use: h, hm, hms)", s)
}

// FormatSeconds renders a duration as compact hour/minute/second parts, e.g.
// "1ч 30м" or "45с". Zero renders as "0с".
func FormatSeconds(seconds int64) string {
	if seconds <= 0 {
		return "0с"
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	var parts []string
	if h > 0 {
		parts = append(parts, strconv.FormatInt(h, 10)+"ч")
	}
	if m > 0 {
		parts = append(parts, strconv.FormatInt(m, 10)+"м")
	}
	if s > 0 {
		parts = append(parts, strconv.FormatInt(s, 10)+"с")
	}
	return strings.Join(parts, " ")
}

// FormatClock renders seconds as HH:MM:SS. Negative input clamps to
// "00:00:00".
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatHM renders seconds as "Xч Yмин", sign-aware. Zero renders as
// "0ч 0мин".
func FormatHM(seconds int64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%dч %dмин", sign, seconds/3600, (seconds%3600)/60)
}

// FormatRemaining renders a plan-remaining second count in the requested
// format. All three formats render the same underlying count.
func FormatRemaining(seconds int64, f RemainingFormat) string {
	sign := ""
	abs := seconds
	if abs < 0 {
		sign = "-"
		abs = -abs
	}

	switch f {
	case RemainingHours:
		return fmt.Sprintf("%s%dч", sign, abs/3600)
	case RemainingHM:
		return sign + FormatHM(abs)
	default:
		return sign + FormatClock(abs)
	}
}

// DateLabelOptions selects the parts of a day label. The day number is
// always shown.
type DateLabelOptions struct {
	Month   bool
	Weekday bool
	Year    bool
}

var ruMonths = [...]string{
	"январь", "февраль", "март", "апрель", "май", "июнь",
	"июль", "август", "сентябрь", "октябрь", "ноябрь", "декабрь",
}

var ruWeekdays = [...]string{
	"воскресенье", "понедельник", "вторник", "среда",
	"четверг", "пятница", "суббота",
}

// DateLabel builds the display label for a calendar day, e.g. "15 январь
// 2024" or "15 январь понедельник".
func DateLabel(t time.Time, opts DateLabelOptions) string {
	parts := []string{strconv.Itoa(t.Day())}
	if opts.Month {
		parts = append(parts, ruMonths[t.Month()-1])
	}
	if opts.Weekday {
		parts = append(parts, ruWeekdays[t.Weekday()])
	}
	if opts.Year {
		parts = append(parts, strconv.Itoa(t.Year()))
	}
	return strings.Join(parts, " ")
}
