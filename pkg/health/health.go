package health

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

const defaultTimeout = 15 * time.Second

// Status of a single check or of the whole run.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded" // an optional check failed
	StatusUnhealthy Status = "unhealthy"
	StatusSkipped   Status = "skipped"
)

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// Check is a named probe. A failing required check stops the run;
// a failing optional check only degrades it.
type Check struct {
	Name     string
	Func     CheckFunc
	Optional bool
}

// Required creates a required check.
func Required(name string, fn CheckFunc) Check {
	return Check{Name: name, Func: fn}
}

// Optional creates an optional check.
func Optional(name string, fn CheckFunc) Check {
	return Check{Name: name, Func: fn, Optional: true}
}

// Result is the outcome of one check.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
	err      error
}

// Report is the outcome of a run, in check order.
type Report struct {
	Status  Status   `json:"status"`
	Results []Result `json:"results"`
}

// Err returns nil unless a required check failed, in which case the error
// wraps ErrCheckFailed and the check's own error.
func (r *Report) Err() error {
	for _, res := range r.Results {
		if res.Status == StatusUnhealthy {
			return fmt.Errorf("%w: %s: %w", ErrCheckFailed, res.Name, res.err)
		}
	}
	return nil
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures Run.
type Option func(*config)

// WithTimeout bounds each check.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger for check results.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Run executes checks one at a time in order. After a required check fails
// the remaining checks are reported as skipped.
func Run(ctx context.Context, checks []Check, opts ...Option) *Report {
	cfg := newConfig(opts...)
	report := &Report{Status: StatusHealthy, Results: make([]Result, 0, len(checks))}

	for _, check := range checks {
		if report.Status == StatusUnhealthy {
			report.Results = append(report.Results, Result{Name: check.Name, Status: StatusSkipped})
			continue
		}

		res := runCheck(ctx, check, cfg)
		report.Results = append(report.Results, res)

		switch {
		case res.Status == StatusHealthy:
			cfg.logger.InfoContext(ctx, "check passed",
				slog.String("check", check.Name),
				slog.Duration("duration", res.Duration),
			)
		case check.Optional:
			report.Status = StatusDegraded
			cfg.logger.WarnContext(ctx, "optional check failed",
				slog.String("check", check.Name),
				slog.String("error", res.Error),
			)
		default:
			report.Status = StatusUnhealthy
			cfg.logger.ErrorContext(ctx, "check failed",
				slog.String("check", check.Name),
				slog.String("error", res.Error),
			)
		}
	}
	return report
}

func runCheck(ctx context.Context, check Check, cfg *config) (res Result) {
	res = Result{Name: check.Name, Status: StatusHealthy}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.err = fmt.Errorf("panic: %v", r)
		}
		if res.err == nil {
			return
		}
		if errors.Is(res.err, context.DeadlineExceeded) {
			res.err = fmt.Errorf("%w: %w", ErrCheckTimeout, res.err)
		}
		res.Status = StatusUnhealthy
		if check.Optional {
			res.Status = StatusDegraded
		}
		res.Error = res.err.Error()
	}()

	if check.Func == nil {
		res.err = errors.New("no check function")
		return res
	}
	res.err = check.Func(ctx)
	return res
}
