package mailer

import (
	"context"
	"errors"
	"strings"
	texttemplate "text/template"
)

// Mailer renders templates and hands the result to a Sender.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	config   Config
}

// New creates a Mailer.
func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{
		sender:   sender,
		renderer: renderer,
		config:   cfg,
	}
}

// SendParams describes a templated email.
type SendParams struct {
	To       string
	Template string // file name relative to the renderer's template dir
	Data     any

	Subject     string // overrides the template subject
	Layout      string // overrides Config.DefaultLayout
	From        string
	ReplyTo     string
	CC          []string
	BCC         []string
	Headers     map[string]string
	Tags        Tags
	Attachments []Attachment
}

// Send renders params.Template and delivers it.
// Subject resolution: params.Subject, then the template's Subject
// frontmatter, then Config.FallbackSubject. The subject is itself
// a text template executed with params.Data.
func (m *Mailer) Send(ctx context.Context, params SendParams) error {
	if strings.TrimSpace(params.To) == "" {
		return ErrNoRecipient
	}

	layout := params.Layout
	if layout == "" {
		layout = m.config.DefaultLayout
	}

	result, err := m.renderer.Render(layout, params.Template, params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	subject, err := executeSubject(m.subject(params.Subject, result.Metadata), params.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	return m.SendRaw(ctx, &Email{
		To:          []string{params.To},
		Subject:     subject,
		HTML:        result.HTML,
		Text:        result.Text,
		From:        params.From,
		ReplyTo:     params.ReplyTo,
		CC:          params.CC,
		BCC:         params.BCC,
		Headers:     params.Headers,
		Tags:        params.Tags,
		Attachments: params.Attachments,
	})
}

// SendRaw delivers a pre-built email without rendering.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	switch {
	case len(email.To) == 0:
		return ErrNoRecipient
	case email.Subject == "":
		return ErrNoSubject
	case email.HTML == "":
		return ErrNoContent
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// Ping verifies the sender can reach its provider.
// Senders that do not implement Pinger yield ErrPingUnsupported.
func (m *Mailer) Ping(ctx context.Context) error {
	p, ok := m.sender.(Pinger)
	if !ok {
		return ErrPingUnsupported
	}
	if err := p.Ping(ctx); err != nil {
		return errors.Join(ErrPingFailed, err)
	}
	return nil
}

func (m *Mailer) subject(override string, metadata map[string]any) string {
	if override != "" {
		return override
	}
	if s, ok := metadata["Subject"].(string); ok && s != "" {
		return s
	}
	return m.config.FallbackSubject
}

func executeSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Option("missingkey=zero").Parse(subject)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
