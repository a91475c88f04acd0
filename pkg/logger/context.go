package logger

import (
	"context"
	"log/slog"
)

type runIDKey struct{}

// WithRunID stores the batch run identifier in ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the batch run identifier stored in ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// RunIDExtractor adds a "run_id" attribute when ctx carries a run identifier.
func RunIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := RunID(ctx); id != "" {
			return slog.String("run_id", id), true
		}
		return slog.Attr{}, false
	}
}
