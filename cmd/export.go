package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"grindlog/internal/aggregate"
	"grindlog/internal/xlsx"
)

var (
	exportOut       string
	exportColumns   string
	exportPeriod    string
	exportFrom      string
	exportTo        string
	exportTotals    bool
	exportRemaining string
	exportMonth     bool
	exportWeekday   bool
	exportYear      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export day summaries to an XLSX workbook",
	Long: `Write one row per calendar day of the requested range to an XLSX
workbook. The workbook carries a hidden raw-data column with each day's
sessions as JSON, so an exported file can be imported back without loss.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return exportRun()
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file path (.xlsx)")
	exportCmd.Flags().StringVar(&exportColumns, "columns", "", "Comma-separated columns (default: all)")
	exportCmd.Flags().StringVar(&exportPeriod, "period", "month", "Range: week, month, all, custom")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start (yyyy-mm-dd, with --period custom)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end (yyyy-mm-dd, with --period custom)")
	exportCmd.Flags().BoolVar(&exportTotals, "totals", true, "Append totals and description rows")
	exportCmd.Flags().StringVar(&exportRemaining, "remaining-format", "hm", "Plan-remaining format: h, hm, hms")
	exportCmd.Flags().BoolVar(&exportMonth, "date-month", true, "Include the month in date labels")
	exportCmd.Flags().BoolVar(&exportWeekday, "date-weekday", false, "Include the weekday in date labels")
	exportCmd.Flags().BoolVar(&exportYear, "date-year", false, "Include the year in date labels")
	_ = exportCmd.MarkFlagRequired("out")

	rootCmd.AddCommand(exportCmd)
}

func exportRun() error {
	columns, err := xlsx.ParseColumns(exportColumns)
	if err != nil {
		return err
	}
	remainingFormat, err := aggregate.ParseRemainingFormat(exportRemaining)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	ctx := context.Background()

	from, to, err := resolveRange(ctx, s, exportPeriod, exportFrom, exportTo)
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

	rows := aggregate.Summarize(from, to, sessions, plans, offDays, aggregate.Options{})

	opts := xlsx.ExportOptions{
		Columns:         columns,
		RemainingFormat: remainingFormat,
		DateLabel: aggregate.DateLabelOptions{
			Month:   exportMonth,
			Weekday: exportWeekday,
			Year:    exportYear,
		},
		Totals: exportTotals,
	}
	if err := xlsx.Export(exportOut, rows, opts); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}

	ui.Success("Exported %d days (%d sessions) to %s", len(rows), len(sessions), exportOut)
	return nil
}
