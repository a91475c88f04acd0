package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certsend/internal/config"
	"github.com/dmitrymomot/certsend/pkg/logger"
)

var (
	cfg      config.Config
	appLog   *slog.Logger
	closeLog logger.Closer
)

var rootCmd = &cobra.Command{
	Use:   "certsend",
	Short: "Render and email participation certificates",
	Long: `certsend renders a PDF certificate for every participant of an event
roster and emails it to them, then prints a report of what was sent.

Settings are read from the environment (ORGANIZATION, EVENT_NAME, EVENT_DATE,
EXCEL_FILE, SMTP_* or RESEND_*, STORAGE_* ...).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			printError("%v", err)
			return err
		}

		if v, _ := cmd.Flags().GetString("log-level"); v != "" {
			cfg.Log.Level = v
		}
		if v, _ := cmd.Flags().GetString("log-file"); cmd.Flags().Changed("log-file") {
			cfg.Log.File = v
		}

		appLog, closeLog, err = logger.New(cfg.Log, logger.RunIDExtractor())
		if err != nil {
			printError("%v", err)
			return err
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// flushLog closes the log file and flushes Sentry.
func flushLog(context.Context) error {
	if closeLog == nil {
		return nil
	}
	return closeLog()
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default $LOG_LEVEL)")
	rootCmd.PersistentFlags().String("log-file", "", "log file path, empty to disable (default $LOG_FILE)")
}
