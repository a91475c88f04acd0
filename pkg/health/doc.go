// Package health runs ordered preflight checks against external dependencies.
//
// Checks run one at a time, in the order given, each bounded by its own
// timeout. When a required check fails the run turns unhealthy and every
// later check is reported as skipped, so a cheap connectivity probe can
// guard more expensive ones. Optional checks that fail only degrade the run.
//
//	report := health.Run(ctx, []health.Check{
//		health.Required("mail", mailer.Ping),
//		health.Required("roster", loadRoster),
//		health.Optional("archive", store.Ping),
//	}, health.WithTimeout(10*time.Second), health.WithLogger(log))
//
//	if err := report.Err(); err != nil {
//		return err
//	}
//
// Panics inside a check are recovered and reported as failures.
package health
