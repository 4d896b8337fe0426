package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0с", FormatSeconds(0))
	assert.Equal(t, "0с", FormatSeconds(-5))
	assert.Equal(t, "45с", FormatSeconds(45))
	assert.Equal(t, "1м 30с", FormatSeconds(90))
	assert.Equal(t, "1ч 30м", FormatSeconds(5400))
	assert.Equal(t, "2ч", FormatSeconds(7200))
	assert.Equal(t, "1ч 1м 1с", FormatSeconds(3661))
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatClock(0))
	assert.Equal(t, "00:00:00", FormatClock(-10))
	assert.Equal(t, "02:00:00", FormatClock(7200))
	assert.Equal(t, "01:30:05", FormatClock(5405))
	assert.Equal(t, "27:15:00", FormatClock(27*3600+15*60), "hours do not wrap at 24")
}

func TestFormatHM(t *testing.T) {
	assert.Equal(t, "0ч 0мин", FormatHM(0))
	assert.Equal(t, "2ч 0мин", FormatHM(7200))
	assert.Equal(t, "1ч 30мин", FormatHM(5400))
	assert.Equal(t, "-1ч 15мин", FormatHM(-4500))
}

func TestFormatRemaining(t *testing.T) {
	// The three formats render the same count
	assert.Equal(t, "2ч", FormatRemaining(7200, RemainingHours))
	assert.Equal(t, "2ч 0мин", FormatRemaining(7200, RemainingHM))
	assert.Equal(t, "02:00:00", FormatRemaining(7200, RemainingClock))

	// Sub-hour remainders truncate in the hours-only format
	assert.Equal(t, "0ч", FormatRemaining(1800, RemainingHours))
	assert.Equal(t, "0ч 30мин", FormatRemaining(1800, RemainingHM))
}

func TestParseRemainingFormat(t *testing.T) {
	for _, s := range []string{"h", "hm", "hms"} {
		f, err := ParseRemainingFormat(s)
		require.NoError(t, err)
		assert.Equal(t, RemainingFormat(s), f)
	}

	_, err := ParseRemainingFormat("minutes")
	assert.Error(t, err)
}

func TestDateLabel(t *testing.T) {
	// A Monday
	d := time.Date(2024, 1, 15, 0, 0, 0, 0, time.Local)

	assert.Equal(t, "15", DateLabel(d, DateLabelOptions{}))
	assert.Equal(t, "15 январь", DateLabel(d, DateLabelOptions{Month: true}))
	assert.Equal(t, "15 январь 2024", DateLabel(d, DateLabelOptions{Month: true, Year: true}))
	assert.Equal(t, "15 январь понедельник", DateLabel(d, DateLabelOptions{Month: true, Weekday: true}))
}
