package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grindlog/internal/models"
)

// resetAddFlags restores the session add flag vars between tests.
func resetAddFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		sessionAddDuration = ""
		sessionAddPlay = ""
		sessionAddSelect = ""
		sessionAddStart = ""
		sessionAddEnd = ""
		sessionAddHands = 0
		sessionAddNotes = ""
	})
}

func TestBuildManualSession_Quick(t *testing.T) {
	resetAddFlags(t)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)

	sessionAddDuration = "4:20"
	sessionAddHands = 800
	sessionAddNotes = "quick entry"

	sess, err := buildManualSession(day)
	require.NoError(t, err)

	assert.Equal(t, int64(4*3600+20*60), sess.OverallDuration)
	assert.True(t, sess.OverallStartTime.Equal(day), "quick entry anchors at the start of the day")
	assert.Equal(t, 800, sess.HandsPlayed)
	assert.Equal(t, "quick entry", sess.Notes)
	require.Len(t, sess.Periods, 1)
	assert.Equal(t, models.PeriodPlay, sess.Periods[0].Type)
}

func TestBuildManualSession_Split(t *testing.T) {
	resetAddFlags(t)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)

	sessionAddPlay = "3:00"
	sessionAddSelect = "1:00"
	sessionAddStart = "18:00"

	sess, err := buildManualSession(day)
	require.NoError(t, err)

	assert.Equal(t, int64(4*3600), sess.OverallDuration)
	assert.True(t, sess.OverallStartTime.Equal(day.Add(18*time.Hour)))
	assert.Equal(t, int64(3*3600), sess.PeriodSeconds(models.PeriodPlay))
	assert.Equal(t, int64(3600), sess.PeriodSeconds(models.PeriodSelect))
	require.Len(t, sess.Periods, 2)
	// Play runs first, select follows back to back
	assert.Equal(t, models.PeriodPlay, sess.Periods[0].Type)
	assert.True(t, sess.Periods[1].StartTime.Equal(sess.Periods[0].EndTime))
}

func TestBuildManualSession_Exact(t *testing.T) {
	resetAddFlags(t)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)

	sessionAddStart = "18:30"
	sessionAddEnd = "23:15"

	sess, err := buildManualSession(day)
	require.NoError(t, err)
	assert.True(t, sess.OverallStartTime.Equal(day.Add(18*time.Hour+30*time.Minute)))
	assert.Equal(t, int64(4*3600+45*60), sess.OverallDuration)
}

func TestBuildManualSession_ExactPastMidnight(t *testing.T) {
	resetAddFlags(t)
	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)

	sessionAddStart = "22:00"
	sessionAddEnd = "1:30"

	sess, err := buildManualSession(day)
	require.NoError(t, err)
	assert.Equal(t, int64(3*3600+30*60), sess.OverallDuration)
	// The session still belongs to its start day
	assert.Equal(t, "2024-03-10", sess.Day())
}

func TestBuildManualSession_ExactNeedsBothEnds(t *testing.T) {
	resetAddFlags(t)
	sessionAddStart = "18:30"

	_, err := buildManualSession(time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local))
	assert.Error(t, err)
}

func TestBuildManualSession_NoMode(t *testing.T) {
	resetAddFlags(t)

	_, err := buildManualSession(time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local))
	assert.Error(t, err)
}

func TestValidateDuration(t *testing.T) {
	assert.Error(t, validateDuration(0))
	assert.Error(t, validateDuration(-60))
	assert.NoError(t, validateDuration(60))
	assert.NoError(t, validateDuration(maxSessionSeconds))
	assert.Error(t, validateDuration(maxSessionSeconds+1))
}
