package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStoreKind selects where sessions are persisted.
type SessionStoreKind string

const (
	// SessionStoreRedis keeps sessions in Redis; required for multi-instance deployments.
	SessionStoreRedis SessionStoreKind = "redis"
	// SessionStoreMemory keeps sessions in process memory.
	SessionStoreMemory SessionStoreKind = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreKind.
func (k *SessionStoreKind) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "memory":
		*k = SessionStoreKind(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionStore: %q (valid options: redis, memory)", v)
	}
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	Store      SessionStoreKind `env:"STORE"       envDefault:"redis"`
	TTL        time.Duration    `env:"TTL"         envDefault:"8h"`
	MemorySize int              `env:"MEMORY_SIZE" envDefault:"10000"`
	KeyPrefix  string           `env:"KEY_PREFIX"  envDefault:"session:"`
}

// Sanitize applies lower bounds.
func (s *SessionConfig) Sanitize() {
	if s.TTL < time.Minute {
		s.TTL = 8 * time.Hour
	}
	if s.MemorySize <= 0 {
		s.MemorySize = 10000
	}
	if strings.TrimSpace(s.KeyPrefix) == "" {
		s.KeyPrefix = "session:"
	}
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// EnrichConfig controls the background user lookup after login.
type EnrichConfig struct {
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Sanitize restores the default timeout when unset.
func (e *EnrichConfig) Sanitize() {
	if e.Timeout <= 0 {
		e.Timeout = 10 * time.Second
	}
}
