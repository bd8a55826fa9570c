package config

import (
	"os"
	"strings"

	"github.com/payassure/payassure-web/internal/domain/theme"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: backend and authentication configuration
//   - session.go: session storage and enrichment configuration
//   - http.go: HTTP server configuration
//   - observability.go: logging and metrics configuration
type AppConfig struct {
	// IsDev controls development mode behavior (templates and assets read from disk).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication and backend configuration
	Auth    AuthConfig
	Backend BackendConfig `envPrefix:"BACKEND_"`

	// Session configuration
	Session SessionConfig `envPrefix:"SESSION_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Enrich  EnrichConfig  `envPrefix:"ENRICH_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// ThemeDefault is the color scheme for visitors without a theme cookie.
	ThemeDefault string `env:"THEME_DEFAULT" envDefault:"light"`

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Backend.Sanitize()
	c.Session.Sanitize()
	c.Enrich.Sanitize()
	c.Auth.Sanitize()
	c.Observability.Sanitize()
	c.ThemeDefault = theme.Parse(c.ThemeDefault).String()

	c.detectDevMode()
}

// DefaultTheme returns the sanitized default theme mode.
func (c *AppConfig) DefaultTheme() theme.Mode {
	return theme.Parse(c.ThemeDefault)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
