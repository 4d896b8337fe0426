package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"grindlog/internal/models"
	"grindlog/internal/output"
	"grindlog/internal/tracker"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <play|select|break>",
	Short: "Switch the running session to another period type",
	Long: `Close the current period and open one of the given type. A no-op when
the type is unchanged or split_periods is disabled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func toggleRun(arg string) error {
	var newType models.PeriodType
	switch models.PeriodType(arg) {
	case models.PeriodPlay, models.PeriodSelect, models.PeriodBreak:
		newType = models.PeriodType(arg)
	default:
		return fmt.Errorf("unknown period type: %q (use: play, select, break)", arg)
	}

	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()
	ctx := context.Background()

	if err := t.Recover(ctx); err != nil {
		return err
	}

	before, _ := t.CurrentPeriodType()
	err = t.Toggle(ctx, newType)
	if errors.Is(err, tracker.ErrNotRunning) {
		ui.Warning("No session is running")
		return nil
	}
	if err != nil {
		return err
	}

	after, _ := t.CurrentPeriodType()
	if after == before {
		ui.Info("Already in a %s period", output.PeriodColor(before))
		return nil
	}
	ui.Success("Switched to %s", output.PeriodColor(after))
	return nil
}
