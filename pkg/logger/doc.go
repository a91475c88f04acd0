// Package logger builds the structured slog logger used by certsend.
//
// Records are written as JSON (or text) to stdout and, when configured, appended
// to a log file and forwarded to Sentry. Context extractors add request- or
// run-scoped attributes to every record:
//
//	log, closeLog, err := logger.New(logger.Config{
//		Level: "info",
//		File:  "certificate_sender.log",
//	}, logger.RunIDExtractor())
//	if err != nil {
//		return err
//	}
//	defer closeLog()
//
//	ctx = logger.WithRunID(ctx, runID)
//	log.InfoContext(ctx, "batch started")
//	// {"level":"INFO","msg":"batch started","run_id":"..."}
//
// # Sentry
//
// Set SentryConfig.DSN to report errors as Sentry issues and warnings as Sentry
// logs. An empty DSN or a failed SDK initialization falls back to local logging
// only.
//
// Libraries in this module accept a *slog.Logger through options and default to
// NewNope.
package logger
