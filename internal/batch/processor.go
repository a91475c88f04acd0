// Package batch drives a certificate run: preflight, roster load, then
// render, archive and dispatch for each participant in roster order.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/certsend/internal/dispatch"
	"github.com/dmitrymomot/certsend/pkg/certificate"
	"github.com/dmitrymomot/certsend/pkg/health"
	"github.com/dmitrymomot/certsend/pkg/roster"
)

const defaultCheckTimeout = 30 * time.Second

// Processor runs batches. It is not safe for concurrent use; records are
// processed one at a time.
type Processor struct {
	source       roster.Source
	renderer     Renderer
	gateway      dispatch.Gateway
	archive      Archiver
	event        certificate.Event
	logger       *slog.Logger
	checkTimeout time.Duration
}

// New creates a Processor.
func New(source roster.Source, renderer Renderer, gateway dispatch.Gateway, event certificate.Event, opts ...Option) *Processor {
	p := &Processor{
		source:       source,
		renderer:     renderer,
		gateway:      gateway,
		event:        event,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		checkTimeout: defaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Preflight checks the mail gateway, then the archive when one is configured.
// Only the gateway is required.
func (p *Processor) Preflight(ctx context.Context) *health.Report {
	checks := []health.Check{health.Required("mailer", p.checkGateway)}
	if p.archive != nil {
		checks = append(checks, health.Optional("archive", p.archive.Check))
	}
	return health.Run(ctx, checks, health.WithTimeout(p.checkTimeout), health.WithLogger(p.logger))
}

func (p *Processor) checkGateway(ctx context.Context) error {
	if c, ok := p.gateway.(interface{ Check(context.Context) error }); ok {
		return c.Check(ctx)
	}
	if !p.gateway.TestConnection(ctx) {
		return dispatch.ErrConnectionFailed
	}
	return nil
}

// ProcessAll runs the preflight, loads the roster and processes every record
// in order, returning one outcome per record.
//
// A failed gateway check yields ErrConnectionFailed and an unreadable roster
// ErrRosterUnavailable; in both cases no record is touched. Cancellation is
// observed between records: the record in flight completes and the outcomes
// so far are returned with ErrInterrupted.
func (p *Processor) ProcessAll(ctx context.Context) ([]Outcome, error) {
	if err := p.Preflight(ctx).Err(); err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}

	records, err := p.source.Records(ctx)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to load roster", slog.Any("error", err))
		return nil, errors.Join(ErrRosterUnavailable, err)
	}

	total := len(records)
	p.logger.InfoContext(ctx, "batch started", slog.Int("total", total))

	outcomes := make([]Outcome, 0, total)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			p.logger.WarnContext(ctx, "batch interrupted",
				slog.Int("processed", len(outcomes)),
				slog.Int("total", total),
			)
			return outcomes, fmt.Errorf("%w: %w", ErrInterrupted, err)
		}

		p.logger.InfoContext(ctx, "processing participant",
			slog.Int("index", i+1),
			slog.Int("total", total),
			slog.String("name", displayName(rec.Name)),
		)
		outcomes = append(outcomes, p.Process(context.WithoutCancel(ctx), rec))
	}

	p.logger.InfoContext(ctx, "batch finished", slog.Int("total", total))
	return outcomes, nil
}

// Process validates, renders, archives and dispatches a single record.
// It never fails: every error, including a panic, becomes a failed outcome.
func (p *Processor) Process(ctx context.Context, rec roster.Record) (out Outcome) {
	out = Outcome{
		Name:       strings.TrimSpace(rec.Name),
		Identifier: strings.TrimSpace(rec.Identifier),
		Email:      strings.TrimSpace(rec.Email),
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "participant processing panicked",
				slog.String("identifier", out.Identifier),
				slog.Any("panic", r),
			)
			out = failed(out, panicReason(r))
		}
	}()

	if out.Name == "" || out.Identifier == "" || out.Email == "" {
		p.logger.WarnContext(ctx, "participant skipped",
			slog.String("identifier", out.Identifier),
			slog.String("reason", ReasonMissingData),
		)
		return failed(out, ReasonMissingData)
	}

	path, err := p.renderer.RenderEvent(ctx, out.Name, out.Identifier, p.event)
	if err != nil {
		p.logger.ErrorContext(ctx, "certificate render failed",
			slog.String("identifier", out.Identifier),
			slog.Any("error", err),
		)
		return failed(out, err.Error())
	}

	var link string
	if p.archive != nil {
		key, url, err := p.archive.Upload(ctx, out.Identifier, path)
		if err != nil {
			p.logger.WarnContext(ctx, "certificate archive failed",
				slog.String("identifier", out.Identifier),
				slog.Any("error", err),
			)
		} else {
			out.ArchiveKey, link = key, url
		}
	}

	ok, reason := p.gateway.Send(ctx, dispatch.Delivery{
		Recipient:   out.Email,
		Name:        out.Name,
		Attachment:  path,
		EventName:   p.event.Name,
		DownloadURL: link,
	})
	out.Reason = reason
	if !ok {
		out.Status = StatusFailed
		return out
	}
	out.Status = StatusSuccess
	return out
}

func panicReason(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(r)
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "Unknown"
}
