package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/payassure/payassure-web/config"
	"github.com/payassure/payassure-web/internal/observability/metrics"
	"github.com/payassure/payassure-web/internal/ports"
	"github.com/payassure/payassure-web/internal/service"
)

// shutdownWaitTimeout is the maximum time to wait for the server and enrichment to stop.
const shutdownWaitTimeout = 15 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Enricher      *service.EnrichmentService
	Sessions      ports.SessionStore
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	Registerer     prometheus.Registerer
	BackendMetrics *metrics.BackendMetrics
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsConfig  config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient // nil when SESSION_STORE=memory
	Registerer  prometheus.Registerer // nil: prometheus.DefaultRegisterer
	Logger      *slog.Logger
}

// buildObservability registers Prometheus collectors when metrics are enabled.
func buildObservability(reg prometheus.Registerer, cfg config.ObservabilityMetricsConfig) ObservabilityContainer {
	oc := ObservabilityContainer{MetricsConfig: cfg}
	if !cfg.Enabled {
		return oc
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	oc.Registerer = reg
	oc.BackendMetrics = metrics.NewBackendMetrics(reg)
	oc.HTTPMetrics = metrics.NewHTTPMetrics(reg)
	return oc
}

// NewServices builds the backend, session store and services from configuration.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps missing AppConfig")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	obs := buildObservability(deps.Registerer, cfg.Observability.Metrics)

	var observer ports.BackendObserver = metrics.NopObserver{}
	if obs.BackendMetrics != nil {
		observer = obs.BackendMetrics
	}
	be, err := BuildBackend(BackendOptions{
		Auth:     cfg.Auth,
		Backend:  cfg.Backend,
		Observer: observer,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	sessions, err := BuildSessionStore(SessionStoreOptions{
		Session:     cfg.Session,
		RedisClient: deps.RedisClient,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	auth := service.NewAuthService(service.AuthServiceOptions{
		Backend:  be,
		Sessions: sessions,
		Settings: service.AuthSettings{
			Roles:      BuildRoleMapper(cfg.Auth),
			SessionTTL: cfg.Session.TTL,
		},
	})
	enricher := service.NewEnrichmentService(service.EnrichmentServiceOptions{
		Backend:  be,
		Sessions: sessions,
		Settings: service.EnrichmentSettings{
			Timeout: cfg.Enrich.Timeout,
			Logger:  logger,
		},
	})

	return ServiceContainer{
		Auth:          auth,
		Enricher:      enricher,
		Sessions:      sessions,
		Observability: obs,
	}, nil
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts the HTTP server and blocks until a shutdown
// signal is received or the server fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler, err := BuildHTTPHandler(HTTPHandlerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("build http handler: %w", err)
	}

	errCh := make(chan error, 1)
	server := startServer(logger, handler, cfg.Config.HTTP.Addr, errCh)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return waitForShutdown(shutdownConfig{
		quit:     quit,
		errCh:    errCh,
		server:   server,
		enricher: cfg.Services.Enricher,
		logger:   logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	quit     <-chan os.Signal
	errCh    <-chan error
	server   *http.Server
	enricher *service.EnrichmentService
	logger   *slog.Logger
}

// waitForShutdown waits for a shutdown signal or server error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case sig := <-cfg.quit:
		cfg.logger.Info("shutting down", "signal", sig.String())
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("http server error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop drains the HTTP server first, then outstanding enrichment fetches.
func gracefulStop(cfg shutdownConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()

	var errs []error
	if err := ShutdownHTTPServer(ShutdownConfig{
		Context: ctx,
		Server:  cfg.server,
		Logger:  cfg.logger,
	}); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if cfg.enricher != nil {
		if err := cfg.enricher.Shutdown(ctx); err != nil {
			cfg.logger.Warn("timeout waiting for user enrichment to stop", "error", err)
			errs = append(errs, fmt.Errorf("shutdown enrichment: %w", err))
		} else {
			cfg.logger.Info("user enrichment stopped")
		}
	}
	return errors.Join(errs...)
}
