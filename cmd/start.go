package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"grindlog/internal/aggregate"
	"grindlog/internal/output"
	"grindlog/internal/tracker"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new session",
	Long: `Start a new session. With split_periods enabled the session opens in a
select period; toggle to play with 'grindlog toggle play'. Only one session
can run at a time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startRun()
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func startRun() error {
	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()
	ctx := context.Background()

	if err := t.Recover(ctx); err != nil {
		return err
	}

	err = t.Start(ctx)
	if errors.Is(err, tracker.ErrAlreadyRunning) {
		start, _ := t.StartTime()
		elapsed, _ := t.Elapsed(time.Now())
		ui.Warning("A session is already running (started %s, elapsed %s)",
			start.Local().Format("15:04:05"), formatElapsed(elapsed))
		return nil
	}
	if err != nil {
		return err
	}

	period, _ := t.CurrentPeriodType()
	start, _ := t.StartTime()
	ui.Success("Session started at %s (%s period)",
		start.Local().Format("15:04:05"), output.PeriodColor(period))
	return nil
}

// formatElapsed renders a live elapsed duration as HH:MM:SS.
func formatElapsed(d time.Duration) string {
	return aggregate.FormatClock(int64(d / time.Second))
}
