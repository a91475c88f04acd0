// Package dispatch delivers rendered certificates to participants.
package dispatch

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/certsend/pkg/mailer"
	"github.com/dmitrymomot/certsend/pkg/sanitizer"
)

//go:embed templates
var templates embed.FS

const certificateTemplate = "certificate.md"

// Delivery is one certificate addressed to one participant.
type Delivery struct {
	Recipient   string
	Name        string
	Attachment  string // path of the rendered certificate
	EventName   string
	DownloadURL string // optional archive link
}

// Gateway sends certificates. Ordinary delivery failures are reported
// through the bool and reason, never as errors or panics.
type Gateway interface {
	Send(ctx context.Context, d Delivery) (ok bool, reason string)
	TestConnection(ctx context.Context) bool
}

// Mailer is a Gateway backed by mailer.Mailer and the embedded certificate email.
type Mailer struct {
	mailer       *mailer.Mailer
	logger       *slog.Logger
	organization string
	eventDate    string
	replyTo      string
	tags         mailer.Tags
}

// Option configures a Mailer.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	templates    fs.FS
	organization string
	eventDate    string
	replyTo      string
	tags         mailer.Tags
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithTemplates replaces the embedded templates. The filesystem must contain
// certificate.md and the configured layout under layouts/.
func WithTemplates(fsys fs.FS) Option {
	return func(o *options) {
		o.templates = fsys
	}
}

// WithOrganization sets the organization signing the email.
func WithOrganization(name string) Option {
	return func(o *options) {
		o.organization = name
	}
}

// WithEventDate sets the event date mentioned in the email body.
func WithEventDate(date string) Option {
	return func(o *options) {
		o.eventDate = date
	}
}

// WithReplyTo sets the Reply-To address.
func WithReplyTo(addr string) Option {
	return func(o *options) {
		o.replyTo = addr
	}
}

// WithTags attaches provider tags to every email.
func WithTags(tags mailer.Tags) Option {
	return func(o *options) {
		o.tags = tags
	}
}

// New creates a Mailer delivering through sender.
func New(sender mailer.Sender, cfg mailer.Config, opts ...Option) *Mailer {
	o := &options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}
	if o.templates == nil {
		sub, err := fs.Sub(templates, "templates")
		if err != nil {
			panic(err) // embedded directory always exists
		}
		o.templates = sub
	}
	if cfg.DefaultLayout == "" {
		cfg.DefaultLayout = "base.html"
	}
	if cfg.FallbackSubject == "" {
		cfg.FallbackSubject = "Your certificate"
	}

	return &Mailer{
		mailer:       mailer.New(sender, mailer.NewRenderer(o.templates), cfg),
		logger:       o.logger,
		organization: o.organization,
		eventDate:    o.eventDate,
		replyTo:      o.replyTo,
		tags:         o.tags,
	}
}

type templateData struct {
	Name         string
	EventName    string
	EventDate    string
	Organization string
	DownloadURL  string
	Plain        plainData // unescaped values for the subject line
}

type plainData struct {
	Name      string
	EventName string
}

// Send implements Gateway.
func (m *Mailer) Send(ctx context.Context, d Delivery) (bool, string) {
	attachment, err := mailer.AttachFile(d.Attachment)
	if err != nil {
		m.logger.ErrorContext(ctx, "certificate attachment unavailable",
			slog.String("recipient", d.Recipient),
			slog.String("path", d.Attachment),
			slog.Any("error", err),
		)
		return false, reason(err)
	}

	name := sanitizer.PlainText(d.Name)
	event := sanitizer.PlainText(d.EventName)
	err = m.mailer.Send(ctx, mailer.SendParams{
		To:       d.Recipient,
		Template: certificateTemplate,
		Data: templateData{
			Name:         sanitizer.EscapeMarkdown(name),
			EventName:    sanitizer.EscapeMarkdown(event),
			EventDate:    sanitizer.MarkdownText(m.eventDate),
			Organization: sanitizer.MarkdownText(m.organization),
			DownloadURL:  d.DownloadURL,
			Plain:        plainData{Name: name, EventName: event},
		},
		ReplyTo:     m.replyTo,
		Tags:        m.tags,
		Attachments: []mailer.Attachment{attachment},
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "certificate email failed",
			slog.String("recipient", d.Recipient),
			slog.Any("error", err),
		)
		return false, reason(err)
	}

	m.logger.InfoContext(ctx, "certificate email sent", slog.String("recipient", d.Recipient))
	return true, fmt.Sprintf("Certificate sent to %s", d.Recipient)
}

// TestConnection implements Gateway. Providers without a connectivity
// probe are assumed reachable.
func (m *Mailer) TestConnection(ctx context.Context) bool {
	return m.Check(ctx) == nil
}

// Check is TestConnection returning the cause of the failure.
func (m *Mailer) Check(ctx context.Context) error {
	err := m.mailer.Ping(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mailer.ErrPingUnsupported):
		m.logger.WarnContext(ctx, "mail provider cannot be checked before sending")
		return nil
	default:
		m.logger.ErrorContext(ctx, "mail provider unreachable", slog.Any("error", err))
		return errors.Join(ErrConnectionFailed, err)
	}
}

// reason flattens err into a single line for reports.
func reason(err error) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(err.Error(), "\n", ": ")), " ")
}

var _ Gateway = (*Mailer)(nil)
