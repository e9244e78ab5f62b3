package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// requirement names a setting that must be non-empty in an environment
type requirement struct {
	field string
	value func(*Config) string
}

var (
	databasePassword = requirement{"DB_PASSWORD", func(c *Config) string {
		if c.DatabaseURL != "" {
			return c.DatabaseURL
		}
		return c.DBPassword
	}}
	completionKey = requirement{"COMPLETION_API_KEY", func(c *Config) string { return c.CompletionAPIKey }}
	appleRootCA   = requirement{"APPLE_ROOT_CA_PATH", func(c *Config) string { return c.AppleRootCAPath }}
	identityURL   = requirement{"IDENTITY_ADMIN_URL", func(c *Config) string { return c.IdentityAdminURL }}
	identityKey   = requirement{"IDENTITY_SERVICE_KEY", func(c *Config) string { return c.IdentityServiceKey }}
	smtpHost      = requirement{"SMTP_HOST", func(c *Config) string { return c.SMTPHost }}
	supportEmail  = requirement{"SUPPORT_EMAIL", func(c *Config) string { return c.SupportEmail }}

	// Environment-specific requirements
	requirements = map[Environment][]requirement{
		Development: {},
		Test:        {},
		CI:          {databasePassword},
		Production: {
			databasePassword,
			completionKey,
			appleRootCA,
			identityURL,
			identityKey,
			smtpHost,
			supportEmail,
		},
	}
)

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs []string

	for _, req := range requirements[cfg.Environment] {
		if req.value(cfg) == "" {
			errs = append(errs, ValidationError{Field: req.field, Message: "is required"}.Error())
		}
	}

	if cfg.CompletionAPIURL != "" {
		if _, err := url.ParseRequestURI(cfg.CompletionAPIURL); err != nil {
			errs = append(errs, ValidationError{Field: "COMPLETION_API_URL", Message: "must be an absolute URL"}.Error())
		}
	}
	if cfg.RateLimitPerHour < 0 {
		errs = append(errs, ValidationError{Field: "RATE_LIMIT_PER_HOUR", Message: "must not be negative"}.Error())
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		errs = append(errs, ValidationError{Field: "SMTP_PORT", Message: "must be a valid port"}.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
