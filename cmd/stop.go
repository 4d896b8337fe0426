package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"grindlog/internal/aggregate"
	"grindlog/internal/models"
	"grindlog/internal/tracker"
)

var (
	stopHands int
	stopNotes string
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running session",
	Long: `Stop the running session and record it. The session is stored
immediately; --hands and --notes fill in the details in the same call, or
use 'grindlog session edit' later.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopRun(cmd.Flags().Changed("hands") || cmd.Flags().Changed("notes"))
	},
}

func init() {
	stopCmd.Flags().IntVar(&stopHands, "hands", 0, "Hands played this session")
	stopCmd.Flags().StringVar(&stopNotes, "notes", "", "Session notes")
	rootCmd.AddCommand(stopCmd)
}

func stopRun(fillDetails bool) error {
	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()
	ctx := context.Background()

	if err := t.Recover(ctx); err != nil {
		return err
	}

	sess, err := t.Stop(ctx)
	if errors.Is(err, tracker.ErrNotRunning) {
		ui.Warning("No session is running")
		return nil
	}
	if err != nil {
		return err
	}

	// The record already exists; details are an update, not an insert.
	if fillDetails {
		s, err := getStore()
		if err != nil {
			return err
		}
		if stopHands < 0 {
			stopHands = 0
		}
		sess.HandsPlayed = stopHands
		sess.Notes = stopNotes
		if err := s.UpdateSession(ctx, sess); err != nil {
			return err
		}
	}

	ui.Success("Session %s recorded: %s", sess.ID, aggregate.FormatSeconds(sess.OverallDuration))
	if len(sess.Periods) > 0 {
		ui.Info("Play %s, select %s",
			aggregate.FormatSeconds(sess.PeriodSeconds(models.PeriodPlay)),
			aggregate.FormatSeconds(sess.PeriodSeconds(models.PeriodSelect)))
	}
	if !fillDetails {
		ui.Info("Add details with: grindlog session edit %s --hands N --notes \"...\"", sess.ID)
	}
	return nil
}
