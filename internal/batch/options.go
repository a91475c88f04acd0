package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/certsend/pkg/certificate"
)

// Renderer produces the certificate for one participant and returns its path.
type Renderer interface {
	RenderEvent(ctx context.Context, name, identifier string, ev certificate.Event) (string, error)
}

// Archiver mirrors rendered artifacts to remote storage.
type Archiver interface {
	Upload(ctx context.Context, identifier, path string) (key, link string, err error)
	Check(ctx context.Context) error
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithArchive mirrors every rendered artifact through a. Archive failures
// are logged and never change an outcome.
func WithArchive(a Archiver) Option {
	return func(p *Processor) {
		p.archive = a
	}
}

// WithCheckTimeout bounds each preflight check.
func WithCheckTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.checkTimeout = d
		}
	}
}
