package resend

// Config holds Resend provider settings, parsed with caarlos0/env.
type Config struct {
	APIKey    string `env:"RESEND_API_KEY"`
	FromEmail string `env:"RESEND_FROM_EMAIL"`
	FromName  string `env:"RESEND_FROM_NAME"`
}

func (c Config) from() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return c.FromName + " <" + c.FromEmail + ">"
}
