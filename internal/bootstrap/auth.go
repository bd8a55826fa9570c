package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/payassure/payassure-web/config"
	"github.com/payassure/payassure-web/internal/adapters/authroles"
	"github.com/payassure/payassure-web/internal/adapters/backend"
	"github.com/payassure/payassure-web/internal/adapters/devauth"
	"github.com/payassure/payassure-web/internal/adapters/memory"
	redisadapter "github.com/payassure/payassure-web/internal/adapters/redis"
	"github.com/payassure/payassure-web/internal/ports"
)

// BackendOptions contains configuration for building the PayAssure backend.
type BackendOptions struct {
	Auth     config.AuthConfig
	Backend  config.BackendConfig
	Observer ports.BackendObserver
	Logger   *slog.Logger
}

// BuildBackend returns the HTTP backend client, or the in-process dev backend when AUTH_MODE=mock.
//
//nolint:ireturn // the concrete backend depends on the configured auth mode.
func BuildBackend(opts BackendOptions) (ports.Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Auth.Mode {
	case config.AuthModeMock:
		logger.Warn("using mock backend; do not run this in production",
			"users", len(devauth.DefaultUsers()))
		be, err := devauth.NewBackend(devauth.Config{
			Password: opts.Auth.DevAuth.Password,
			OTP:      opts.Auth.DevAuth.OTP,
		})
		if err != nil {
			return nil, fmt.Errorf("build dev backend: %w", err)
		}
		return be, nil

	case config.AuthModeBackend, "":
		client, err := backend.NewClient(backend.Config{
			BaseURL:  opts.Backend.BaseURL,
			Timeout:  opts.Backend.Timeout,
			Observer: opts.Observer,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("build backend client: %w", err)
		}
		logger.Info("using PayAssure backend", "base_url", opts.Backend.BaseURL, "timeout", opts.Backend.Timeout)
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported auth mode %q", opts.Auth.Mode)
	}
}

// BuildRoleMapper returns a mapper honoring ROLE_ALIASES, or nil when none are configured.
//
//nolint:ireturn // nil means "use the built-in role parsing".
func BuildRoleMapper(cfg config.AuthConfig) ports.RoleMapper {
	if len(cfg.RoleAliases) == 0 {
		return nil
	}
	return authroles.NewAliasRoleMapper(cfg.RoleAliases)
}

// SessionStoreOptions contains configuration for the session store.
type SessionStoreOptions struct {
	Session     config.SessionConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// BuildSessionStore returns the configured session store.
// The Redis store requires a connected client.
//
//nolint:ireturn // the store implementation is chosen at runtime.
func BuildSessionStore(opts SessionStoreOptions) (ports.ConditionalSessionStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch opts.Session.Store {
	case config.SessionStoreMemory:
		logger.Info("using in-memory session store", "size", opts.Session.MemorySize, "ttl", opts.Session.TTL)
		return memory.NewSessionStore(opts.Session.MemorySize, opts.Session.TTL), nil
	case config.SessionStoreRedis, "":
		if opts.RedisClient == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		return redisadapter.NewSessionStoreWithPrefix(opts.RedisClient, opts.Session.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported session store %q", opts.Session.Store)
	}
}
