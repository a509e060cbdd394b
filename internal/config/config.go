// Package config loads service settings from EATWISE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "EATWISE"

// Config holds the runtime settings for the service.
type Config struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Timezone used to bucket entries into calendar days.
	Timezone string `envconfig:"TIMEZONE" default:"Local"`

	ProvisioningEnabled  bool          `envconfig:"PROVISIONING_ENABLED" default:"true"`
	ProvisioningInterval time.Duration `envconfig:"PROVISIONING_INTERVAL" default:"5m"`

	MailAPIURL    string `envconfig:"MAIL_API_URL" default:""`
	MailAPIKey    string `envconfig:"MAIL_API_KEY" default:""`
	MailFrom      string `envconfig:"MAIL_FROM" default:"noreply@eatwise.app"`
	InviteBaseURL string `envconfig:"INVITE_BASE_URL" default:"https://eatwise.app/register"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:""`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Administrator"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`

	OIDCIssuer       string `envconfig:"OIDC_ISSUER" default:""`
	OIDCClientID     string `envconfig:"OIDC_CLIENT_ID" default:""`
	OIDCClientSecret string `envconfig:"OIDC_CLIENT_SECRET" default:""`
	OIDCRedirectURL  string `envconfig:"OIDC_REDIRECT_URL" default:""`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"10"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.ProvisioningInterval <= 0 {
		return errors.New("PROVISIONING_INTERVAL must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}
	if c.OIDCIssuer != "" && (c.OIDCClientID == "" || c.OIDCRedirectURL == "") {
		return errors.New("OIDC_ISSUER requires OIDC_CLIENT_ID and OIDC_REDIRECT_URL")
	}
	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SSOEnabled reports whether OIDC login is configured.
func (c *Config) SSOEnabled() bool {
	return c.OIDCIssuer != ""
}
