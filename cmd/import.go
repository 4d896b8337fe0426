package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"grindlog/internal/xlsx"
)

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import sessions from an exported workbook",
	Long: `Read sessions back out of an exported XLSX workbook. Sessions are
matched by id, so importing the same file twice adds nothing new and an
import can be repeated safely after a partial failure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func importRun(path string) error {
	result, err := xlsx.ReadWorkbook(path)
	if err != nil {
		return err
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	added, err := s.ImportSessions(context.Background(), result.Sessions)
	if err != nil {
		return err
	}

	skipped := len(result.Sessions) - added
	ui.Success("Imported %d sessions (%d already present)", added, skipped)
	if result.SkippedRows > 0 {
		ui.Warning("%d rows had unreadable raw data and were skipped", result.SkippedRows)
	}
	return nil
}
