package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/config"
	"github.com/CasuallyAlive/CS3500-Spreadsheet/packages/spreadsheet"
)

// app is the state shared by every subcommand of one invocation
type app struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "sheetcalc",
		Short: "Evaluate formulas and edit saved spreadsheets",
		Long: `sheetcalc reads, edits and converts spreadsheet files.

The storage format is picked from the file extension:
  .xml         the original spreadsheet xml format
  .yaml, .yml  a yaml document
  .xlsx        an excel workbook
  .db, .bolt   a bolt database holding many sheets

A path without an extension uses storage.format from the config file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "sheetcalc.yaml",
		"Path to the config file, ignored if it does not exist")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Override log.level from the config (debug, info, warn, error)")

	rootCmd.AddCommand(
		newEvalCmd(a),
		newSetCmd(a),
		newGetCmd(a),
		newListCmd(a),
		newConvertCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.logger = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

func (a *app) spreadsheetContext() (*spreadsheet.SpreadsheetContext, error) {
	return a.cfg.SpreadsheetContext(a.logger)
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
