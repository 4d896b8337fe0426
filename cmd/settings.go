package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"grindlog/internal/settings"
)

var (
	settingsExportOut string
	settingsResetYes  bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Export, import, or reset settings",
}

var settingsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export settings to a JSON file",
	Long: `Write the full settings document to a JSON file: theme, feature
toggles, goals, and the complete plan and off-day tables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsExportRun()
	},
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import settings from a JSON file",
	Long: `Replace the current settings with a previously exported document. The
plan and off-day tables are replaced wholesale, not merged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsImportRun(args[0])
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored data",
	Long: `Delete every session, plan, off-day flag, and any active session
snapshot. Settings in the config file are untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsResetRun()
	},
}

func init() {
	settingsExportCmd.Flags().StringVarP(&settingsExportOut, "out", "o", "", "Output file path (.json)")
	_ = settingsExportCmd.MarkFlagRequired("out")

	settingsResetCmd.Flags().BoolVar(&settingsResetYes, "yes", false, "Skip the confirmation check")

	settingsCmd.AddCommand(settingsExportCmd)
	settingsCmd.AddCommand(settingsImportCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

// currentDocument assembles the settings document from the effective config.
func currentDocument() settings.Document {
	return settings.Document{
		Theme:              viper.GetString("theme"),
		SplitPeriods:       viper.GetBool("split_periods"),
		ShowNotes:          viper.GetBool("show_notes"),
		ShowHandsPlayed:    viper.GetBool("show_hands"),
		AllowManualEditing: viper.GetBool("allow_manual_editing"),
		Goals: settings.Goals{
			Hours:    viper.GetFloat64("goals.hours"),
			Hands:    viper.GetInt("goals.hands"),
			Sessions: viper.GetInt("goals.sessions"),
		},
	}
}

func settingsExportRun() error {
	s, err := getStore()
	if err != nil {
		return err
	}

	data, err := settings.Export(context.Background(), s, currentDocument())
	if err != nil {
		return err
	}
	if err := os.WriteFile(settingsExportOut, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	ui.Success("Settings exported to %s", settingsExportOut)
	return nil
}

func settingsImportRun(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	doc, err := settings.Import(context.Background(), s, data)
	if err != nil {
		return err
	}

	// Persist the toggles and goals into the config file.
	viper.Set("theme", doc.Theme)
	viper.Set("split_periods", doc.SplitPeriods)
	viper.Set("show_notes", doc.ShowNotes)
	viper.Set("show_hands", doc.ShowHandsPlayed)
	viper.Set("allow_manual_editing", doc.AllowManualEditing)
	viper.Set("goals.hours", doc.Goals.Hours)
	viper.Set("goals.hands", doc.Goals.Hands)
	viper.Set("goals.sessions", doc.Goals.Sessions)

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(cfgPath); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	ui.Success("Settings imported from %s (%d plans, %d off days)", path, len(doc.Plans), len(doc.OffDays))
	return nil
}

func settingsResetRun() error {
	if !settingsResetYes {
		return fmt.Errorf("this deletes all sessions and plans; re-run with --yes to confirm")
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	if err := s.ResetAll(context.Background()); err != nil {
		return err
	}

	ui.Success("All data deleted")
	return nil
}
