package bootstrap

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/payassure/payassure-web/config"
)

const redisPingTimeout = 5 * time.Second

// RedisOptions contains configuration for the Redis connection.
type RedisOptions struct {
	Redis  config.RedisConfig
	Logger *slog.Logger
}

// redisTarget is the resolved connection shape for cluster, sentinel or direct mode.
type redisTarget struct {
	mode             string
	addrs            []string
	master           string
	username         string
	password         string
	sentinelPassword string
	db               int
	tls              *tls.Config
}

// String describes the target without credentials.
func (t redisTarget) String() string {
	switch t.mode {
	case "sentinel":
		return "sentinel:" + t.master
	case "cluster":
		return "cluster:" + strings.Join(t.addrs, ",")
	default:
		return strings.Join(t.addrs, ",")
	}
}

//nolint:ireturn // the concrete client depends on the deployment mode.
func (t redisTarget) client() redis.UniversalClient {
	switch t.mode {
	case "cluster":
		return redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:     t.addrs,
			Username:  t.username,
			Password:  t.password,
			TLSConfig: t.tls,
		})
	case "sentinel":
		return redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       t.master,
			SentinelAddrs:    t.addrs,
			Password:         t.password,
			SentinelPassword: t.sentinelPassword,
		})
	default:
		return redis.NewClient(&redis.Options{
			Addr:      t.addrs[0],
			Username:  t.username,
			Password:  t.password,
			DB:        t.db,
			TLSConfig: t.tls,
		})
	}
}

// resolveRedisTarget picks the connection mode from config. Cluster wins over sentinel.
// A redis:// or rediss:// URI supplies address, credentials, DB and TLS for direct
// mode, and serves as the single seed address for cluster mode without explicit nodes.
func resolveRedisTarget(cfg config.RedisConfig) (redisTarget, error) {
	switch {
	case cfg.UseCluster:
		t := redisTarget{mode: "cluster", addrs: normalizeAddrs(cfg.ClusterNodes), password: cfg.Password}
		if len(t.addrs) == 0 {
			seed, err := targetFromURI(cfg.URI, cfg.Password)
			if err != nil {
				return redisTarget{}, fmt.Errorf("redis cluster seed: %w", err)
			}
			t.addrs, t.username, t.password, t.tls = seed.addrs, seed.username, seed.password, seed.tls
		}
		if len(t.addrs) == 0 {
			return redisTarget{}, errors.New("redis cluster configuration requires at least one address")
		}
		return t, nil

	case cfg.UseSentinel:
		nodes := normalizeAddrs(cfg.SentinelNodes)
		if len(nodes) == 0 {
			return redisTarget{}, errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		return redisTarget{
			mode:             "sentinel",
			addrs:            nodes,
			master:           cfg.SentinelMasterName,
			password:         cfg.Password,
			sentinelPassword: cfg.SentinelPassword,
		}, nil

	default:
		t, err := targetFromURI(cfg.URI, cfg.Password)
		if err != nil {
			return redisTarget{}, err
		}
		if len(t.addrs) == 0 {
			return redisTarget{}, errors.New("redis direct configuration requires a URI")
		}
		return t, nil
	}
}

// targetFromURI accepts either host:port or a redis URL. An empty URI yields no addresses.
func targetFromURI(uri, password string) (redisTarget, error) {
	uri = strings.TrimSpace(uri)
	t := redisTarget{mode: "direct", password: password}
	if uri == "" {
		return t, nil
	}
	if !isRedisURL(uri) {
		t.addrs = []string{uri}
		return t, nil
	}
	opt, err := redis.ParseURL(uri)
	if err != nil {
		return redisTarget{}, fmt.Errorf("parse redis url: %w", err)
	}
	t.addrs = []string{opt.Addr}
	t.username = opt.Username
	if opt.Password != "" {
		t.password = opt.Password
	}
	t.db = opt.DB
	t.tls = opt.TLSConfig
	return t, nil
}

// ConnectRedis connects and pings Redis in the configured mode.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single, sentinel, or cluster clients at runtime.
func ConnectRedis(opts RedisOptions) (redis.UniversalClient, error) {
	target, err := resolveRedisTarget(opts.Redis)
	if err != nil {
		return nil, err
	}
	client := target.client()

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis %s: %w", target, pingErr)
	}

	if opts.Logger != nil {
		opts.Logger.Info("redis connected", "addr", target.String(), "mode", target.mode)
	}
	return client, nil
}

func normalizeAddrs(raw []string) []string {
	result := make([]string, 0, len(raw))
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func isRedisURL(value string) bool {
	return strings.HasPrefix(value, "redis://") || strings.HasPrefix(value, "rediss://")
}
