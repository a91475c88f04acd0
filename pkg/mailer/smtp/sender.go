// Package smtp delivers mailer emails through an SMTP relay using go-mail.
// Gmail works with an app password (plain or login auth) or with OAuth2 (xoauth2).
package smtp

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	mail "github.com/wneessen/go-mail"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/certsend/pkg/mailer"
)

// gmailScope grants SMTP access for XOAUTH2.
const gmailScope = "https://mail.google.com/"

// Sender implements mailer.Sender and mailer.Pinger over SMTP.
// A new connection is opened for every call.
type Sender struct {
	config Config
	auth   mail.SMTPAuthType
	tls    mail.TLSPolicy
	tokens oauth2.TokenSource
}

// Option configures a Sender.
type Option func(*Sender)

// WithTokenSource overrides the OAuth2 token source used for XOAUTH2.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(s *Sender) {
		s.tokens = ts
	}
}

// New validates cfg and creates a Sender.
func New(cfg Config, opts ...Option) (*Sender, error) {
	auth, err := parseAuth(cfg.Auth)
	if err != nil {
		return nil, err
	}
	tls, err := parseTLS(cfg.TLS, auth)
	if err != nil {
		return nil, err
	}
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, fmt.Errorf("%w: host and port are required", ErrInvalidConfig)
	}
	if cfg.sender() == "" {
		return nil, fmt.Errorf("%w: from email or username is required", ErrInvalidConfig)
	}

	s := &Sender{config: cfg, auth: auth, tls: tls}
	for _, opt := range opts {
		opt(s)
	}

	if auth == mail.SMTPAuthXOAUTH2 && s.tokens == nil {
		if cfg.OAuth.ClientID == "" || cfg.OAuth.RefreshToken == "" {
			return nil, fmt.Errorf("%w: xoauth2 needs client id and refresh token", ErrInvalidConfig)
		}
		oc := &oauth2.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{gmailScope},
		}
		s.tokens = oc.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.OAuth.RefreshToken})
	}
	return s, nil
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	msg, err := s.message(email)
	if err != nil {
		return err
	}

	client, err := s.client()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

// Ping implements mailer.Pinger. It connects, negotiates TLS, authenticates
// and disconnects without sending.
func (s *Sender) Ping(ctx context.Context) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	if err := client.Close(); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func (s *Sender) client() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(s.config.Port)}
	if s.config.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(s.config.Timeout))
	}
	if s.config.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(s.tls))
	}

	if s.auth != mail.SMTPAuthNoAuth {
		password := s.config.Password
		if s.auth == mail.SMTPAuthXOAUTH2 {
			tok, err := s.tokens.Token()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrToken, err)
			}
			password = tok.AccessToken
		}
		opts = append(opts,
			mail.WithSMTPAuth(s.auth),
			mail.WithUsername(s.config.Username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return client, nil
}

func (s *Sender) message(email *mailer.Email) (*mail.Msg, error) {
	msg := mail.NewMsg()

	var err error
	switch {
	case email.From != "":
		err = msg.From(email.From)
	case s.config.FromName != "":
		err = msg.FromFormat(s.config.FromName, s.config.sender())
	default:
		err = msg.From(s.config.sender())
	}
	if err != nil {
		return nil, fmt.Errorf("%w: from: %v", ErrInvalidMessage, err)
	}

	if err := msg.To(email.To...); err != nil {
		return nil, fmt.Errorf("%w: to: %v", ErrInvalidMessage, err)
	}
	if len(email.CC) > 0 {
		if err := msg.Cc(email.CC...); err != nil {
			return nil, fmt.Errorf("%w: cc: %v", ErrInvalidMessage, err)
		}
	}
	if len(email.BCC) > 0 {
		if err := msg.Bcc(email.BCC...); err != nil {
			return nil, fmt.Errorf("%w: bcc: %v", ErrInvalidMessage, err)
		}
	}
	if email.ReplyTo != "" {
		if err := msg.ReplyTo(email.ReplyTo); err != nil {
			return nil, fmt.Errorf("%w: reply-to: %v", ErrInvalidMessage, err)
		}
	}
	for k, v := range email.Headers {
		msg.SetGenHeader(mail.Header(k), v)
	}

	msg.Subject(email.Subject)
	if email.Text != "" {
		msg.SetBodyString(mail.TypeTextPlain, email.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	} else {
		msg.SetBodyString(mail.TypeTextHTML, email.HTML)
	}

	for _, a := range email.Attachments {
		var opts []mail.FileOption
		if a.ContentType != "" {
			opts = append(opts, mail.WithFileContentType(mail.ContentType(a.ContentType)))
		}
		if a.ContentID != "" {
			opts = append(opts, mail.WithFileContentID(a.ContentID))
			if err := msg.EmbedReader(a.Filename, bytes.NewReader(a.Content), opts...); err != nil {
				return nil, fmt.Errorf("%w: embed %s: %v", ErrInvalidMessage, a.Filename, err)
			}
			continue
		}
		if err := msg.AttachReader(a.Filename, bytes.NewReader(a.Content), opts...); err != nil {
			return nil, fmt.Errorf("%w: attach %s: %v", ErrInvalidMessage, a.Filename, err)
		}
	}
	return msg, nil
}

func parseAuth(s string) (mail.SMTPAuthType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "plain":
		return mail.SMTPAuthPlain, nil
	case "login":
		return mail.SMTPAuthLogin, nil
	case "xoauth2", "oauth2":
		return mail.SMTPAuthXOAUTH2, nil
	case "none":
		return mail.SMTPAuthNoAuth, nil
	default:
		return "", fmt.Errorf("%w: unknown auth %q", ErrInvalidConfig, s)
	}
}

// parseTLS resolves the STARTTLS policy for non-SSL ports. Without an
// explicit setting, authenticated relays require STARTTLS and relays
// without auth use it only when offered.
func parseTLS(s string, auth mail.SMTPAuthType) (mail.TLSPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		if auth == mail.SMTPAuthNoAuth {
			return mail.TLSOpportunistic, nil
		}
		return mail.TLSMandatory, nil
	case "mandatory":
		return mail.TLSMandatory, nil
	case "opportunistic":
		return mail.TLSOpportunistic, nil
	case "none":
		return mail.NoTLS, nil
	default:
		return 0, fmt.Errorf("%w: unknown tls policy %q", ErrInvalidConfig, s)
	}
}
