// Package certsend renders participation certificates for an event roster
// and emails each participant their copy.
//
// An App wires the roster (an Excel workbook), the PDF renderer, a mail
// provider (SMTP or Resend) and an optional S3 archive from a
// config.Config, then runs the batch:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//
//	app, err := certsend.New(cfg,
//	    certsend.WithLogger(log),
//	    certsend.WithFailedOutput("failed.csv"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	if _, err := app.Run(); err != nil {
//	    os.Exit(1)
//	}
//
// # Run
//
// Run checks the mail provider first and aborts when it is unreachable.
// It then loads the roster and processes participants one at a time, in
// roster order. A participant with a missing name, identifier or email,
// a render failure or a rejected delivery becomes a failed record in the
// report; it never stops the run.
//
// SIGINT and SIGTERM stop the run after the participant in progress.
// Run returns nil in that case and prints no report.
//
// # Archive
//
// When a storage bucket is configured, each rendered certificate is also
// uploaded under STORAGE_PREFIX and the email carries a signed download
// link. Archive failures are logged and do not fail the participant.
package certsend
