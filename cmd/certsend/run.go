package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certsend"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Render and email certificates for the whole roster",
	Long: `Check the mail provider, load the roster and process every participant in
order. Records with missing data or failed deliveries are listed in the report;
they do not stop the run. Ctrl+C stops after the participant in progress.`,
	Example: `  certsend run
  certsend run --excel day2.xlsx --folder out/day2 --failed-out retry.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetString("excel"); v != "" {
			cfg.ExcelFile = v
		}
		if v, _ := cmd.Flags().GetString("folder"); v != "" {
			cfg.CertificateFolder = v
		}
		failedOut, _ := cmd.Flags().GetString("failed-out")

		app, err := certsend.New(cfg,
			certsend.WithContext(cmd.Context()),
			certsend.WithLogger(appLog),
			certsend.WithOutput(cmd.OutOrStdout()),
			certsend.WithFailedOutput(failedOut),
			certsend.WithShutdownHook(flushLog),
		)
		if err != nil {
			appLog.Error("invalid configuration", slog.Any("error", err))
			printError("%v", err)
			_ = flushLog(cmd.Context())
			return err
		}

		res, err := app.Run()
		if err != nil {
			printError("%v", err)
			return err
		}
		if !res.Completed {
			printWarn("Interrupted, no report written")
			return nil
		}
		if res.FailedExport != "" {
			printInfo("Failed records written to %s", res.FailedExport)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("excel", "", "roster workbook (default $EXCEL_FILE)")
	runCmd.Flags().String("folder", "", "certificate output folder (default $CERTIFICATE_FOLDER)")
	runCmd.Flags().String("failed-out", "", "write failed records to this CSV file")
}
