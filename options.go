package certsend

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dmitrymomot/certsend/internal/dispatch"
	"github.com/dmitrymomot/certsend/pkg/mailer"
	"github.com/dmitrymomot/certsend/pkg/roster"
	"github.com/dmitrymomot/certsend/pkg/storage"
)

// Option configures the application.
type Option func(*App)

// WithContext sets a custom base context for signal handling.
// Useful for testing or when integrating with existing context hierarchies.
// Defaults to context.Background() if not set.
func WithContext(ctx context.Context) Option {
	return func(a *App) {
		if ctx != nil {
			a.baseCtx = ctx
		}
	}
}

// WithLogger sets the application logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithOutput sets where the report is printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		if w != nil {
			a.out = w
		}
	}
}

// WithFailedOutput writes the failed records as CSV to path after each run.
func WithFailedOutput(path string) Option {
	return func(a *App) {
		a.failedOut = path
	}
}

// WithSource replaces the Excel roster.
func WithSource(s roster.Source) Option {
	return func(a *App) {
		if s != nil {
			a.source = s
		}
	}
}

// WithSender replaces the configured mail provider.
func WithSender(s mailer.Sender) Option {
	return func(a *App) {
		if s != nil {
			a.sender = s
		}
	}
}

// WithGateway replaces the whole dispatch gateway. Takes precedence over WithSender.
func WithGateway(g dispatch.Gateway) Option {
	return func(a *App) {
		if g != nil {
			a.gateway = g
		}
	}
}

// WithStorage enables the archive on s regardless of the storage config.
func WithStorage(s storage.Storage) Option {
	return func(a *App) {
		if s != nil {
			a.store = s
		}
	}
}

// WithShutdownHook registers a function called after every Run and Check,
// in registration order.
func WithShutdownHook(fn func(context.Context) error) Option {
	return func(a *App) {
		if fn != nil {
			a.shutdownHooks = append(a.shutdownHooks, fn)
		}
	}
}

// WithShutdownTimeout bounds the shutdown hooks.
// Defaults to 10 seconds.
func WithShutdownTimeout(d time.Duration) Option {
	return func(a *App) {
		if d > 0 {
			a.shutdownTimeout = d
		}
	}
}
