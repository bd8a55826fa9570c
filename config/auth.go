package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents which backend the portal authenticates against.
type AuthMode string

const (
	// AuthModeBackend uses the PayAssure backend over HTTP.
	AuthModeBackend AuthMode = "backend"
	// AuthModeMock uses an in-process fake backend (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "backend", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: backend, mock)", v)
	}
}

// DevAuthConfig controls the mock backend used when AUTH_MODE=mock.
type DevAuthConfig struct {
	Password string `env:"PASSWORD" envDefault:"password"`
	OTP      string `env:"OTP"      envDefault:"123456"`
}

// AuthConfig groups authentication-related configuration.
type AuthConfig struct {
	// Mode determines which backend implementation to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"backend"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// RoleAliases maps backend role strings to portal roles, e.g. "administrator:admin,client:customer".
	RoleAliases map[string]string `env:"ROLE_ALIASES"`
}

// Sanitize drops empty alias entries.
func (a *AuthConfig) Sanitize() {
	for k, v := range a.RoleAliases {
		if strings.TrimSpace(k) == "" || strings.TrimSpace(v) == "" {
			delete(a.RoleAliases, k)
		}
	}
}

// BackendConfig points the portal at the PayAssure backend.
type BackendConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:5000"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"15s"`
}

// Sanitize trims the base URL and restores the default timeout when unset.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.Timeout <= 0 {
		b.Timeout = 15 * time.Second
	}
}
