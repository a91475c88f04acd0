package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json or text
	File   string `env:"LOG_FILE" envDefault:"certificate_sender.log"`
	Sentry SentryConfig
}

// Closer flushes and releases the logger's destinations.
type Closer func() error

// New creates a logger writing to stdout, to cfg.File when set, and to Sentry
// when a DSN is configured. The returned Closer must be called before exit.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, Closer, error) {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter is New with an explicit console writer.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) (*slog.Logger, Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var console slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		console = slog.NewJSONHandler(w, opts)
	case "text":
		console = slog.NewTextHandler(w, opts)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidFormat, cfg.Format)
	}

	handlers := []slog.Handler{console}
	var closers []func() error

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrLogFile, err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, opts))
		closers = append(closers, f.Close)
	}

	sentryHandler, err := newSentryHandler(cfg.Sentry)
	switch {
	case err != nil:
		// Sentry is optional; keep logging locally.
		slog.New(console).Error("failed to initialize Sentry", slog.String("error", err.Error()))
	case sentryHandler != nil:
		handlers = append(handlers, sentryHandler)
		closers = append([]func() error{flushSentry}, closers...)
	}

	closer := func() error {
		var errs []error
		for _, c := range closers {
			if err := c(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	return slog.New(NewContextHandler(newTeeHandler(handlers...), extractors...)), closer, nil
}

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses "debug", "info", "warn" or "error" (case-insensitive).
// An empty string yields info.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return level, nil
}
