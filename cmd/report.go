package cmd

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"grindlog/internal/aggregate"
	"grindlog/internal/output"
)

var (
	reportPeriod    string
	reportFrom      string
	reportTo        string
	reportDesc      bool
	reportTotals    bool
	reportRemaining string
	reportGoals     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show per-day summaries for a range",
	Long: `Show one row per calendar day of the requested range, whether or not
anything was played that day. Sessions are reconciled against plans and off
days; off days show as "Выходной".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportRun()
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportPeriod, "period", "month", "Range: week, month, all, custom")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Range start (yyyy-mm-dd, with --period custom)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Range end (yyyy-mm-dd, with --period custom)")
	reportCmd.Flags().BoolVar(&reportDesc, "desc", false, "Newest day first")
	reportCmd.Flags().BoolVar(&reportTotals, "totals", false, "Append a totals row")
	reportCmd.Flags().StringVar(&reportRemaining, "remaining-format", "hm", "Plan-remaining format: h, hm, hms")
	reportCmd.Flags().BoolVar(&reportGoals, "goals", false, "Compare totals against configured goals")

	rootCmd.AddCommand(reportCmd)
}

func reportRun() error {
	remainingFormat, err := aggregate.ParseRemainingFormat(reportRemaining)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	from, to, err := resolveRange(ctx, s, reportPeriod, reportFrom, reportTo)
	if err != nil {
		return err
	}

	sessions, err := s.ListSessionsBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return err
	}
	plans, err := s.ListPlans(ctx)
	if err != nil {
		return err
	}
	offDays, err := s.ListOffDays(ctx)
	if err != nil {
		return err
	}

	rows := aggregate.Summarize(from, to, sessions, plans, offDays, aggregate.Options{Descending: reportDesc})

	showHands := viper.GetBool("show_hands")
	showNotes := viper.GetBool("show_notes")

	headers := []string{"Date", "Sessions", "Total", "Play", "Select", "Plan", "Remaining"}
	if showHands {
		headers = append(headers, "Hands", "Plan hands", "Hands/h")
	}
	if showNotes {
		headers = append(headers, "Notes")
	}

	table := ui.Table(headers)
	for _, row := range rows {
		table.Append(reportTableRow(row, remainingFormat, showHands, showNotes))
	}
	table.Render()

	if reportTotals {
		printTotals(aggregate.Sum(rows), showHands)
	}
	if reportGoals {
		printGoals(aggregate.Sum(rows))
	}
	return nil
}

func reportTableRow(row aggregate.DaySummary, f aggregate.RemainingFormat, showHands, showNotes bool) []string {
	date := row.Key + " " + aggregate.DateLabel(row.Date, aggregate.DateLabelOptions{Weekday: true})

	if row.OffDay {
		cells := []string{date, output.Yellow("Выходной"), "", "", "", "", ""}
		if showHands {
			cells = append(cells, "", "", "")
		}
		if showNotes {
			cells = append(cells, row.Notes)
		}
		return cells
	}

	has := row.HasSessions()
	blank := func(v string) string {
		if !has {
			return ""
		}
		return v
	}

	plan := ""
	if row.PlanHours > 0 {
		plan = strconv.FormatFloat(row.PlanHours, 'f', -1, 64) + "ч"
	}
	remaining := ""
	if row.PlanHours > 0 {
		remaining = aggregate.FormatRemaining(row.PlanRemainingSeconds, f)
	}

	cells := []string{
		date,
		blank(strconv.Itoa(row.SessionCount)),
		blank(aggregate.FormatClock(row.TotalSeconds)),
		blank(aggregate.FormatClock(row.PlaySeconds)),
		blank(aggregate.FormatClock(row.SelectSeconds)),
		plan,
		remaining,
	}
	if showHands {
		planHands := ""
		if row.PlanHands > 0 {
			planHands = strconv.Itoa(row.PlanHands)
		}
		cells = append(cells,
			blank(strconv.Itoa(row.HandsPlayed)),
			planHands,
			blank(strconv.Itoa(row.HandsPerHour)),
		)
	}
	if showNotes {
		cells = append(cells, row.Notes)
	}
	return cells
}

func printTotals(t aggregate.Totals, showHands bool) {
	ui.Info("Active days: %d, sessions: %d", t.ActiveDays, t.SessionCount)
	ui.Info("Total: %s, play: %s, select: %s",
		aggregate.FormatHM(t.TotalSeconds),
		aggregate.FormatHM(t.PlaySeconds),
		aggregate.FormatHM(t.SelectSeconds))
	if t.PlanHours > 0 || t.PlanRemainingSeconds > 0 {
		ui.Info("Planned: %sч, remaining: %s",
			strconv.FormatFloat(t.PlanHours, 'f', -1, 64),
			aggregate.FormatHM(t.PlanRemainingSeconds))
	}
	if showHands {
		ui.Info("Hands: %d, avg hands/hour: %d", t.HandsPlayed, t.AvgHandsPerHour)
	}
}

func printGoals(t aggregate.Totals) {
	goalHours := viper.GetFloat64("goals.hours")
	goalHands := viper.GetInt("goals.hands")
	goalSessions := viper.GetInt("goals.sessions")
	if goalHours <= 0 && goalHands <= 0 && goalSessions <= 0 {
		ui.Info("No goals configured")
		return
	}

	if goalHours > 0 {
		played := float64(t.PlaySeconds) / 3600
		ui.Info("Hours goal: %.1f / %s", played, strconv.FormatFloat(goalHours, 'f', -1, 64))
	}
	if goalHands > 0 {
		ui.Info("Hands goal: %d / %d", t.HandsPlayed, goalHands)
	}
	if goalSessions > 0 {
		ui.Info("Sessions goal: %d / %d", t.SessionCount, goalSessions)
	}
}
