package certsend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/dmitrymomot/certsend/internal/batch"
	"github.com/dmitrymomot/certsend/internal/report"
	"github.com/dmitrymomot/certsend/pkg/health"
	"github.com/dmitrymomot/certsend/pkg/logger"
)

// Result summarizes a finished Run.
type Result struct {
	Completed    bool // false when the run was interrupted
	Total        int
	Sent         int
	Failed       int
	FailedExport string // path of the failed-records CSV, empty when none was written
}

// Run processes the whole roster and prints the report.
// It handles SIGINT and SIGTERM: the participant in progress is finished,
// the run stops and a Result with Completed false is returned without a report.
//
// Returns an error for fatal conditions: failed connection check,
// unreadable roster, or a report that could not be written.
func (a *App) Run() (res Result, err error) {
	ctx, cancel := signal.NotifyContext(a.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = logger.WithRunID(ctx, uuid.NewString())

	defer func() {
		if herr := a.shutdown(); herr != nil && err == nil {
			err = herr
		}
	}()

	a.logger.InfoContext(ctx, "certificate run started",
		slog.String("event", a.cfg.EventName),
		slog.String("organization", a.cfg.Organization),
		slog.String("folder", a.cfg.CertificateFolder),
	)

	outcomes, err := a.processor.ProcessAll(ctx)
	switch {
	case interrupted(ctx, err):
		a.logger.WarnContext(ctx, "process interrupted by user", slog.Int("processed", len(outcomes)))
		return Result{}, nil
	case err != nil:
		a.logger.ErrorContext(ctx, "certificate run failed", slog.Any("error", err))
		return Result{}, err
	}

	rep := report.Summarize(outcomes)
	a.logger.InfoContext(ctx, "certificate run finished",
		slog.Int("total", rep.Total),
		slog.Int("sent", rep.SuccessCount),
		slog.Int("failed", rep.FailedCount),
	)

	res = Result{
		Completed: true,
		Total:     rep.Total,
		Sent:      rep.SuccessCount,
		Failed:    rep.FailedCount,
	}
	if err := rep.Print(a.out); err != nil {
		return res, fmt.Errorf("print report: %w", err)
	}
	if a.failedOut != "" {
		if err := writeFailed(a.failedOut, outcomes); err != nil {
			return res, err
		}
		res.FailedExport = a.failedOut
		a.logger.InfoContext(ctx, "failed records exported",
			slog.String("path", a.failedOut),
			slog.Int("records", rep.FailedCount),
		)
	}
	return res, nil
}

// Check runs the preflight checks without touching the roster.
func (a *App) Check() (*health.Report, error) {
	ctx, cancel := signal.NotifyContext(a.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rep := a.processor.Preflight(ctx)
	return rep, errors.Join(rep.Err(), a.shutdown())
}

// shutdown runs the shutdown hooks in order with a fresh context.
func (a *App) shutdown() error {
	if len(a.shutdownHooks) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var errs []error
	for _, hook := range a.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func interrupted(ctx context.Context, err error) bool {
	if errors.Is(err, batch.ErrInterrupted) {
		return true
	}
	return err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled)
}

func writeFailed(path string, outcomes []batch.Outcome) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export failed records: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export failed records: %w", cerr)
		}
	}()

	if err := report.WriteFailedCSV(f, outcomes); err != nil {
		return fmt.Errorf("export failed records: %w", err)
	}
	return nil
}
