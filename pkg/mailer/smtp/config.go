package smtp

import "time"

// Config holds SMTP relay settings, parsed with caarlos0/env.
// The defaults target Gmail with STARTTLS on port 587.
type Config struct {
	Host      string        `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	Port      int           `env:"SMTP_PORT" envDefault:"587"`
	Username  string        `env:"SMTP_USERNAME"`
	Password  string        `env:"SMTP_PASSWORD"`
	Auth      string        `env:"SMTP_AUTH" envDefault:"plain"` // plain, login, xoauth2 or none
	TLS       string        `env:"SMTP_TLS"`                     // mandatory, opportunistic or none; empty picks by auth
	FromEmail string        `env:"SMTP_FROM_EMAIL"`
	FromName  string        `env:"SMTP_FROM_NAME"`
	Timeout   time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
	OAuth     OAuthConfig
}

// OAuthConfig holds the Google OAuth2 client used for XOAUTH2.
type OAuthConfig struct {
	ClientID     string `env:"SMTP_OAUTH_CLIENT_ID"`
	ClientSecret string `env:"SMTP_OAUTH_CLIENT_SECRET"`
	RefreshToken string `env:"SMTP_OAUTH_REFRESH_TOKEN"`
}

func (c Config) sender() string {
	if c.FromEmail != "" {
		return c.FromEmail
	}
	return c.Username
}
