package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"grindlog/internal/models"
	"grindlog/internal/settings"
)

var (
	planSetHours float64
	planSetHands int

	planApplyFrom     string
	planApplyTo       string
	planApplySchedule string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage daily plans and off days",
}

var planSetCmd = &cobra.Command{
	Use:   "set <date>",
	Short: "Set the plan for a day",
	Long: `Set the hour and hand targets for a day. Setting both to zero removes
the plan.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return planSetRun(args[0])
	},
}

var planClearCmd = &cobra.Command{
	Use:   "clear <date>",
	Short: "Remove the plan for a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return planClearRun(args[0])
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all planned days and off days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return planListRun()
	},
}

var planOffCmd = &cobra.Command{
	Use:   "off <date>",
	Short: "Mark a day as an off day",
	Long: `Mark a day as an off day. Off days are excluded from plan accounting;
a stored plan stays but its remainder is suppressed. Use --clear to unmark.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		clear, _ := cmd.Flags().GetBool("clear")
		return planOffRun(args[0], !clear)
	},
}

var planApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Stamp a weekly schedule onto a date range",
	Long: `Apply a YAML weekly schedule to every day in a range. The schedule maps
weekday names to hours/hands targets or off: true, e.g.

  monday:    {hours: 6, hands: 1500}
  tuesday:   {hours: 6, hands: 1500}
  sunday:    {off: true}

Weekdays absent from the schedule are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return planApplyRun()
	},
}

func init() {
	planSetCmd.Flags().Float64Var(&planSetHours, "hours", 0, "Planned hours")
	planSetCmd.Flags().IntVar(&planSetHands, "hands", 0, "Planned hands")

	planOffCmd.Flags().Bool("clear", false, "Unmark the off day")

	planApplyCmd.Flags().StringVar(&planApplyFrom, "from", "", "Range start (yyyy-mm-dd)")
	planApplyCmd.Flags().StringVar(&planApplyTo, "to", "", "Range end (yyyy-mm-dd)")
	planApplyCmd.Flags().StringVar(&planApplySchedule, "schedule", "", "YAML schedule file")
	_ = planApplyCmd.MarkFlagRequired("from")
	_ = planApplyCmd.MarkFlagRequired("to")
	_ = planApplyCmd.MarkFlagRequired("schedule")

	planCmd.AddCommand(planSetCmd)
	planCmd.AddCommand(planClearCmd)
	planCmd.AddCommand(planListCmd)
	planCmd.AddCommand(planOffCmd)
	planCmd.AddCommand(planApplyCmd)
	rootCmd.AddCommand(planCmd)
}

func planSetRun(dateArg string) error {
	day, err := parseDay(dateArg)
	if err != nil {
		return err
	}
	if planSetHours < 0 || planSetHands < 0 {
		return fmt.Errorf("plan targets cannot be negative")
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	date := models.DayKey(day)
	plan := models.Plan{Hours: planSetHours, Hands: planSetHands}
	if err := s.SetPlan(context.Background(), date, plan); err != nil {
		return err
	}

	if plan.IsZero() {
		ui.Success("Plan for %s removed", date)
	} else {
		ui.Success("Plan for %s: %sh, %d hands", date, strconv.FormatFloat(plan.Hours, 'f', -1, 64), plan.Hands)
	}
	return nil
}

func planClearRun(dateArg string) error {
	day, err := parseDay(dateArg)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	date := models.DayKey(day)
	if err := s.SetPlan(context.Background(), date, models.Plan{}); err != nil {
		return err
	}
	ui.Success("Plan for %s removed", date)
	return nil
}

func planListRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	plans, err := s.ListPlans(ctx)
	if err != nil {
		return err
	}
	offDays, err := s.ListOffDays(ctx)
	if err != nil {
		return err
	}

	if len(plans) == 0 && len(offDays) == 0 {
		ui.Info("No plans or off days set")
		return nil
	}

	dates := make(map[string]bool, len(plans)+len(offDays))
	for d := range plans {
		dates[d] = true
	}
	for d := range offDays {
		dates[d] = true
	}
	sorted := make([]string, 0, len(dates))
	for d := range dates {
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)

	table := ui.Table([]string{"Date", "Hours", "Hands", "Off"})
	for _, date := range sorted {
		hours, hands := "-", "-"
		if p, ok := plans[date]; ok {
			hours = strconv.FormatFloat(p.Hours, 'f', -1, 64)
			hands = strconv.Itoa(p.Hands)
		}
		off := ""
		if offDays[date] {
			off = "off"
		}
		table.Append([]string{date, hours, hands, off})
	}
	table.Render()
	return nil
}

func planOffRun(dateArg string, off bool) error {
	day, err := parseDay(dateArg)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	date := models.DayKey(day)
	if err := s.SetOffDay(context.Background(), date, off); err != nil {
		return err
	}
	if off {
		ui.Success("%s marked as off day", date)
	} else {
		ui.Success("%s is no longer an off day", date)
	}
	return nil
}

func planApplyRun() error {
	from, err := parseDay(planApplyFrom)
	if err != nil {
		return err
	}
	to, err := parseDay(planApplyTo)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(planApplySchedule)
	if err != nil {
		return fmt.Errorf("read schedule: %w", err)
	}
	sched, err := settings.ParseSchedule(data)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	if err := settings.ApplySchedule(context.Background(), s, from, to, sched); err != nil {
		return err
	}

	ui.Success("Schedule applied from %s to %s", models.DayKey(from), models.DayKey(to))
	return nil
}
