package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/certsend"
	"github.com/dmitrymomot/certsend/pkg/health"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the mail provider and archive without sending anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := certsend.New(cfg,
			certsend.WithContext(cmd.Context()),
			certsend.WithLogger(appLog),
			certsend.WithShutdownHook(flushLog),
		)
		if err != nil {
			printError("%v", err)
			_ = flushLog(cmd.Context())
			return err
		}

		rep, err := app.Check()
		for _, res := range rep.Results {
			switch res.Status {
			case health.StatusHealthy:
				printSuccess("%s (%s)", res.Name, res.Duration.Round(time.Millisecond))
			case health.StatusSkipped:
				printInfo("- %s skipped", res.Name)
			case health.StatusDegraded:
				printWarn("%s: %s", res.Name, res.Error)
			default:
				printError("%s: %s", res.Name, res.Error)
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
