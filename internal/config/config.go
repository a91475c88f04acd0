// Package config loads certsend settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/dmitrymomot/certsend/internal/archive"
	"github.com/dmitrymomot/certsend/pkg/certificate"
	"github.com/dmitrymomot/certsend/pkg/logger"
	"github.com/dmitrymomot/certsend/pkg/mailer"
	"github.com/dmitrymomot/certsend/pkg/mailer/resend"
	"github.com/dmitrymomot/certsend/pkg/mailer/smtp"
	"github.com/dmitrymomot/certsend/pkg/roster"
	"github.com/dmitrymomot/certsend/pkg/storage"
)

// Mail providers.
const (
	ProviderSMTP   = "smtp"
	ProviderResend = "resend"
)

// Config is the full run configuration.
type Config struct {
	Organization      string        `env:"ORGANIZATION"`
	EventName         string        `env:"EVENT_NAME"`
	EventDate         string        `env:"EVENT_DATE"`
	CertificateFolder string        `env:"CERTIFICATE_FOLDER" envDefault:"certificates"`
	ExcelFile         string        `env:"EXCEL_FILE" envDefault:"participants.xlsx"`
	ExcelSheet        string        `env:"EXCEL_SHEET"`
	HeaderRow         int           `env:"EXCEL_HEADER_ROW" envDefault:"2"`
	Provider          string        `env:"MAILER_PROVIDER" envDefault:"smtp"`
	ReplyTo           string        `env:"MAILER_REPLY_TO"`
	CheckTimeout      time.Duration `env:"PREFLIGHT_TIMEOUT" envDefault:"30s"`

	LeftSignatoryName   string `env:"SIGNATORY_LEFT_NAME"`
	LeftSignatoryTitle  string `env:"SIGNATORY_LEFT_TITLE" envDefault:"Event Coordinator"`
	RightSignatoryName  string `env:"SIGNATORY_RIGHT_NAME"`
	RightSignatoryTitle string `env:"SIGNATORY_RIGHT_TITLE" envDefault:"Principal"`

	Log     logger.Config
	Mailer  mailer.Config
	SMTP    smtp.Config
	Resend  resend.Config
	Storage storage.Config
	Archive archive.Config
}

// Load parses the process environment into a Config. It does not validate.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom is Load reading from the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, errors.Join(ErrParse, err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, nil
}

// Event returns the event shared by every certificate in the run.
func (c Config) Event() certificate.Event {
	return certificate.Event{
		Name:         c.EventName,
		Date:         c.EventDate,
		Organization: c.Organization,
	}
}

// RendererOptions returns the certificate options for the configured signature lines.
func (c Config) RendererOptions() []certificate.Option {
	return []certificate.Option{certificate.WithSignatories(
		certificate.Signatory{Name: c.LeftSignatoryName, Title: c.LeftSignatoryTitle},
		certificate.Signatory{Name: c.RightSignatoryName, Title: c.RightSignatoryTitle},
	)}
}

// ArchiveEnabled reports whether artifacts are mirrored to object storage.
func (c Config) ArchiveEnabled() bool {
	return c.Storage.Enabled()
}

// Validate reports every missing or invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	required := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissing, name))
		}
	}

	required("ORGANIZATION", c.Organization)
	required("EVENT_NAME", c.EventName)
	required("EVENT_DATE", c.EventDate)
	required("CERTIFICATE_FOLDER", c.CertificateFolder)
	required("EXCEL_FILE", c.ExcelFile)

	if c.HeaderRow < 1 {
		errs = append(errs, fmt.Errorf("%w: EXCEL_HEADER_ROW must be at least 1, got %d", ErrInvalid, c.HeaderRow))
	}

	switch c.Provider {
	case ProviderSMTP:
		required("SMTP_HOST", c.SMTP.Host)
		if !strings.EqualFold(c.SMTP.Auth, "none") {
			required("SMTP_USERNAME", c.SMTP.Username)
		}
		switch strings.ToLower(c.SMTP.Auth) {
		case "xoauth2", "oauth2":
			required("SMTP_OAUTH_CLIENT_ID", c.SMTP.OAuth.ClientID)
			required("SMTP_OAUTH_CLIENT_SECRET", c.SMTP.OAuth.ClientSecret)
			required("SMTP_OAUTH_REFRESH_TOKEN", c.SMTP.OAuth.RefreshToken)
		case "none":
			required("SMTP_FROM_EMAIL", c.SMTP.FromEmail)
		default:
			required("SMTP_PASSWORD", c.SMTP.Password)
		}
	case ProviderResend:
		required("RESEND_API_KEY", c.Resend.APIKey)
		required("RESEND_FROM_EMAIL", c.Resend.FromEmail)
	default:
		errs = append(errs, fmt.Errorf("%w: MAILER_PROVIDER %q (want %s or %s)", ErrInvalid, c.Provider, ProviderSMTP, ProviderResend))
	}

	if c.ArchiveEnabled() {
		required("STORAGE_ACCESS_KEY", c.Storage.AccessKey)
		required("STORAGE_SECRET_KEY", c.Storage.SecretKey)
		if c.Archive.LinkTTL > storage.MaxURLExpiry {
			errs = append(errs, fmt.Errorf("%w: STORAGE_LINK_TTL exceeds %s", ErrInvalid, storage.MaxURLExpiry))
		}
	}

	return errors.Join(errs...)
}

// RosterOptions returns the Excel source options for the configured sheet and header row.
func (c Config) RosterOptions() []roster.ExcelOption {
	opts := []roster.ExcelOption{roster.WithHeaderRow(c.HeaderRow)}
	if c.ExcelSheet != "" {
		opts = append(opts, roster.WithSheet(c.ExcelSheet))
	}
	return opts
}
