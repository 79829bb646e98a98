package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// EnvConfig is the explicit configuration object constructed once at startup
// and passed by reference into the token service and lifecycle constructors.
// Nothing in the business logic reads the environment directly.
type EnvConfig struct {
	SigningKey      string        `env:"SECRET_KEY"`
	TokenExpiration int           `env:"TOKEN_EXPIRATION_HOURS" envDefault:"23"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	ContextKey      string        `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	AuthScheme      string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
	Issuer          string        `env:"AUTH_ISSUER"`
	Audience        []string      `env:"AUTH_AUDIENCE" envSeparator:","`

	DSN             string `env:"DATABASE_DSN" envDefault:"file:contacts.db?cache=shared"`
	Port            string `env:"PORT" envDefault:"3000"`
	SendGridAPIKey  string `env:"SENDGRID_API_KEY"`
	FrontendBaseURL string `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`
	MailFrom        string `env:"MAIL_FROM"`
	GoogleJWKSURL   string `env:"GOOGLE_JWKS_URL"`
}

// LoadConfig populates an EnvConfig from the process environment.
func LoadConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse environment configuration")
	}

	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}

	return cfg, nil
}

func (c *EnvConfig) GetSigningKey() string { return c.SigningKey }

func (c *EnvConfig) GetTokenExpiration() int { return c.TokenExpiration }

func (c *EnvConfig) GetResetTokenTTL() time.Duration { return c.ResetTokenTTL }

func (c *EnvConfig) GetContextKey() string { return c.ContextKey }

func (c *EnvConfig) GetAuthScheme() string { return c.AuthScheme }

func (c *EnvConfig) GetIssuer() string { return c.Issuer }

func (c *EnvConfig) GetAudience() []string { return c.Audience }

var _ Config = (*EnvConfig)(nil)
