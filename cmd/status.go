package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"grindlog/internal/aggregate"
	"grindlog/internal/models"
	"grindlog/internal/output"
)

var statusFollow bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running session, if any",
	Long: `Show whether a session is running, its start time, current period, and
elapsed time. Elapsed time is always recomputed from the wall clock, so it
is correct even after a restart. --follow keeps printing once per second
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun()
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusFollow, "follow", "f", false, "Keep printing elapsed time once per second")
	rootCmd.AddCommand(statusCmd)
}

func statusRun() error {
	t, err := newTracker()
	if err != nil {
		return err
	}
	defer t.Close()
	ctx := context.Background()

	if err := t.Recover(ctx); err != nil {
		return err
	}

	if !t.Running() {
		ui.Info("No session running")
		return nil
	}

	start, _ := t.StartTime()
	period, _ := t.CurrentPeriodType()
	elapsed, _ := t.Elapsed(time.Now())

	ui.Info("Session running since %s", start.Local().Format("2006-01-02 15:04:05"))
	ui.Info("Current period: %s", output.PeriodColor(period))
	ui.Info("Elapsed: %s", formatElapsed(elapsed))

	if !statusFollow {
		return nil
	}

	followCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = t.Follow(followCtx, func(elapsed time.Duration, period models.PeriodType) {
		fmt.Fprintf(ui.Out, "\r%s  %s ", aggregate.FormatClock(int64(elapsed/time.Second)), output.PeriodColor(period))
	})
	fmt.Fprintln(ui.Out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
