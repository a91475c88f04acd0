// Package resend delivers mailer emails through the Resend HTTP API.
package resend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/certsend/pkg/mailer"
)

// ErrMissingAPIKey indicates the sender was built without an API key.
var ErrMissingAPIKey = errors.New("resend: api key is required")

// Sender implements mailer.Sender and mailer.Pinger over the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// New creates a Resend sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if s.config.APIKey == "" {
		return ErrMissingAPIKey
	}

	from := email.From
	if from == "" {
		from = s.config.from()
	}

	req := &resend.SendEmailRequest{
		From:        from,
		To:          email.To,
		Subject:     email.Subject,
		Html:        email.HTML,
		Text:        email.Text,
		ReplyTo:     email.ReplyTo,
		Cc:          email.CC,
		Bcc:         email.BCC,
		Headers:     email.Headers,
		Attachments: attachments(email.Attachments),
		Tags:        tags(email.Tags),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// Ping implements mailer.Pinger by listing domains. Keys restricted to
// sending cannot list domains but are still valid, so that rejection counts
// as reachable.
func (s *Sender) Ping(ctx context.Context) error {
	if s.config.APIKey == "" {
		return ErrMissingAPIKey
	}

	_, err := s.client.Domains.ListWithContext(ctx)
	if err == nil || strings.Contains(strings.ToLower(err.Error()), "restricted") {
		return nil
	}
	return fmt.Errorf("resend: %w", err)
}

func attachments(in []mailer.Attachment) []*resend.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]*resend.Attachment, len(in))
	for i, a := range in {
		out[i] = &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		}
	}
	return out
}

func tags(in mailer.Tags) []resend.Tag {
	if len(in) == 0 {
		return nil
	}
	out := make([]resend.Tag, 0, len(in))
	for name, value := range in {
		out = append(out, resend.Tag{Name: cleanTag(name), Value: cleanTag(tagValue(value))})
	}
	return out
}

// maxTagLength is the longest tag name or value Resend accepts.
const maxTagLength = 256

// cleanTag maps every character Resend rejects in tag names and values
// (anything but ASCII letters, digits, '_' and '-') to '_' and truncates
// the result to maxTagLength.
func cleanTag(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() == maxTagLength {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// tagValue stringifies a tag value. Presence-only tags become "true".
func tagValue(v any) string {
	switch val := v.(type) {
	case nil, struct{}:
		return "true"
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
