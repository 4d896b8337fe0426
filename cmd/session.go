package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"grindlog/internal/aggregate"
	"grindlog/internal/models"
)

// maxSessionSeconds caps manually entered durations. Nobody grinds two
// straight days.
const maxSessionSeconds = 48 * 3600

var (
	sessionAddDate     string
	sessionAddDuration string
	sessionAddPlay     string
	sessionAddSelect   string
	sessionAddStart    string
	sessionAddEnd      string
	sessionAddHands    int
	sessionAddNotes    string

	sessionEditHands int
	sessionEditNotes string
	sessionEditStart string
	sessionEditEnd   string

	sessionListPeriod string
	sessionListFrom   string
	sessionListTo     string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "List, add, edit, and delete sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionListRun()
	},
}

var sessionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a session manually",
	Long: `Record a session without running the tracker.

Quick entry anchors the session at the start of the day:
  grindlog session add --date 2024-03-10 --duration 4:20 --hands 800

Split entry records play and select periods back to back:
  grindlog session add --play 3:00 --select 1:00

Exact entry uses times of day; an end at or before the start rolls past
midnight:
  grindlog session add --start 22:00 --end 1:30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionAddRun()
	},
}

var sessionEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a recorded session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionEditRun(cmd, args[0])
	},
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a recorded session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionDeleteRun(args[0])
	},
}

func init() {
	sessionAddCmd.Flags().StringVar(&sessionAddDate, "date", "today", "Session day (yyyy-mm-dd, today, yesterday)")
	sessionAddCmd.Flags().StringVar(&sessionAddDuration, "duration", "", "Total duration, e.g. 4:20")
	sessionAddCmd.Flags().StringVar(&sessionAddPlay, "play", "", "Play duration, e.g. 3:00")
	sessionAddCmd.Flags().StringVar(&sessionAddSelect, "select", "", "Select duration, e.g. 1:00")
	sessionAddCmd.Flags().StringVar(&sessionAddStart, "start", "", "Exact start time of day, e.g. 18:30")
	sessionAddCmd.Flags().StringVar(&sessionAddEnd, "end", "", "Exact end time of day, e.g. 23:15")
	sessionAddCmd.Flags().IntVar(&sessionAddHands, "hands", 0, "Hands played")
	sessionAddCmd.Flags().StringVar(&sessionAddNotes, "notes", "", "Session notes")

	sessionEditCmd.Flags().IntVar(&sessionEditHands, "hands", 0, "Hands played")
	sessionEditCmd.Flags().StringVar(&sessionEditNotes, "notes", "", "Session notes")
	sessionEditCmd.Flags().StringVar(&sessionEditStart, "start", "", "Corrected start time of day, e.g. 18:30")
	sessionEditCmd.Flags().StringVar(&sessionEditEnd, "end", "", "Corrected end time of day, e.g. 23:15")

	sessionListCmd.Flags().StringVar(&sessionListPeriod, "period", "month", "Range: week, month, all, custom")
	sessionListCmd.Flags().StringVar(&sessionListFrom, "from", "", "Range start (yyyy-mm-dd, with --period custom)")
	sessionListCmd.Flags().StringVar(&sessionListTo, "to", "", "Range end (yyyy-mm-dd, with --period custom)")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionAddCmd)
	sessionCmd.AddCommand(sessionEditCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)
	rootCmd.AddCommand(sessionCmd)
}

func sessionListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	from, to, err := resolveRange(ctx, s, sessionListPeriod, sessionListFrom, sessionListTo)
	if err != nil {
		return err
	}

	sessions, err := s.ListSessionsBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		ui.Info("No sessions in range")
		return nil
	}

	table := ui.Table([]string{"ID", "Start", "End", "Duration", "Hands", "Notes"})
	for _, sess := range sessions {
		table.Append([]string{
			sess.ID,
			sess.OverallStartTime.Local().Format("2006-01-02 15:04"),
			sess.OverallEndTime.Local().Format("2006-01-02 15:04"),
			aggregate.FormatSeconds(sess.OverallDuration),
			fmt.Sprintf("%d", sess.HandsPlayed),
			sess.Notes,
		})
	}
	table.Render()
	return nil
}

func sessionAddRun() error {
	if !viper.GetBool("allow_manual_editing") {
		return fmt.Errorf("manual editing is disabled (allow_manual_editing)")
	}
	day, err := parseDay(sessionAddDate)
	if err != nil {
		return err
	}

	sess, err := buildManualSession(day)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	if err := s.CreateSession(context.Background(), sess); err != nil {
		return err
	}

	ui.Success("Session %s recorded for %s (%s)", sess.ID, sess.Day(),
		aggregate.FormatSeconds(sess.OverallDuration))
	return nil
}

// buildManualSession validates the add flags and synthesizes the session the
// way the tracker would have recorded it.
func buildManualSession(day time.Time) (*models.Session, error) {
	hasSplit := sessionAddPlay != "" || sessionAddSelect != ""
	hasExact := sessionAddStart != "" || sessionAddEnd != ""

	var start time.Time
	var totalSeconds int64

	switch {
	case hasSplit:
		var playSeconds, selectSeconds int64
		var err error
		if sessionAddPlay != "" {
			if playSeconds, err = parseClock(sessionAddPlay); err != nil {
				return nil, err
			}
		}
		if sessionAddSelect != "" {
			if selectSeconds, err = parseClock(sessionAddSelect); err != nil {
				return nil, err
			}
		}
		totalSeconds = playSeconds + selectSeconds

		start = day
		if sessionAddStart != "" {
			offset, err := parseClock(sessionAddStart)
			if err != nil {
				return nil, err
			}
			start = day.Add(time.Duration(offset) * time.Second)
		}
		if err := validateDuration(totalSeconds); err != nil {
			return nil, err
		}

		sess := newManualSession(start, totalSeconds)
		playEnd := start.Add(time.Duration(playSeconds) * time.Second)
		if playSeconds > 0 {
			sess.Periods = append(sess.Periods, models.Period{Type: models.PeriodPlay, StartTime: start, EndTime: playEnd})
		}
		if selectSeconds > 0 {
			sess.Periods = append(sess.Periods, models.Period{Type: models.PeriodSelect, StartTime: playEnd, EndTime: sess.OverallEndTime})
		}
		return sess, nil

	case hasExact:
		if sessionAddStart == "" || sessionAddEnd == "" {
			return nil, fmt.Errorf("exact entry needs both --start and --end")
		}
		startOffset, err := parseClock(sessionAddStart)
		if err != nil {
			return nil, err
		}
		endOffset, err := parseClock(sessionAddEnd)
		if err != nil {
			return nil, err
		}
		start = day.Add(time.Duration(startOffset) * time.Second)
		end := day.Add(time.Duration(endOffset) * time.Second)
		if !end.After(start) {
			end = end.AddDate(0, 0, 1) // session ran past midnight
		}
		totalSeconds = int64(end.Sub(start) / time.Second)
		if totalSeconds > 24*3600 {
			return nil, fmt.Errorf("a session cannot run longer than 24 hours")
		}

		sess := newManualSession(start, totalSeconds)
		sess.Periods = []models.Period{{Type: models.PeriodPlay, StartTime: start, EndTime: end}}
		return sess, nil

	default:
		if sessionAddDuration == "" {
			return nil, fmt.Errorf("specify --duration, --play/--select, or --start/--end")
		}
		var err error
		if totalSeconds, err = parseClock(sessionAddDuration); err != nil {
			return nil, err
		}
		if err := validateDuration(totalSeconds); err != nil {
			return nil, err
		}

		sess := newManualSession(day, totalSeconds)
		sess.Periods = []models.Period{{Type: models.PeriodPlay, StartTime: day, EndTime: sess.OverallEndTime}}
		return sess, nil
	}
}

func newManualSession(start time.Time, totalSeconds int64) *models.Session {
	hands := sessionAddHands
	if hands < 0 {
		hands = 0
	}
	sess := &models.Session{
		OverallStartTime: start,
		OverallEndTime:   start.Add(time.Duration(totalSeconds) * time.Second),
		HandsPlayed:      hands,
		Notes:            sessionAddNotes,
	}
	sess.RecomputeDuration()
	return sess
}

func validateDuration(seconds int64) error {
	if seconds <= 0 {
		return fmt.Errorf("duration must be greater than zero")
	}
	if seconds > maxSessionSeconds {
		return fmt.Errorf("duration cannot exceed 48 hours")
	}
	return nil
}

func sessionEditRun(cmd *cobra.Command, id string) error {
	if !viper.GetBool("allow_manual_editing") {
		return fmt.Errorf("manual editing is disabled (allow_manual_editing)")
	}
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	sess, err := s.GetSession(ctx, id)
	if err != nil {
		return err
	}

	changed := false
	if cmd.Flags().Changed("hands") {
		if sessionEditHands < 0 {
			sessionEditHands = 0
		}
		sess.HandsPlayed = sessionEditHands
		changed = true
	}
	if cmd.Flags().Changed("notes") {
		sess.Notes = sessionEditNotes
		changed = true
	}
	if sessionEditStart != "" {
		offset, err := parseClock(sessionEditStart)
		if err != nil {
			return err
		}
		day := startOfDay(sess.OverallStartTime)
		sess.OverallStartTime = day.Add(time.Duration(offset) * time.Second)
		changed = true
	}
	if sessionEditEnd != "" {
		offset, err := parseClock(sessionEditEnd)
		if err != nil {
			return err
		}
		day := startOfDay(sess.OverallEndTime)
		sess.OverallEndTime = day.Add(time.Duration(offset) * time.Second)
		changed = true
	}
	if !changed {
		ui.Info("Nothing to change")
		return nil
	}

	if sess.OverallEndTime.Before(sess.OverallStartTime) {
		return fmt.Errorf("end time is before start time")
	}
	sess.RecomputeDuration()

	if err := s.UpdateSession(ctx, sess); err != nil {
		return err
	}
	ui.Success("Session %s updated", sess.ID)
	return nil
}

func sessionDeleteRun(id string) error {
	s, err := getStore()
	if err != nil {
		return err
	}

	if err := s.DeleteSession(context.Background(), id); err != nil {
		return err
	}
	ui.Success("Session %s deleted", id)
	return nil
}
