package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // pprof is intentionally exposed when pprofAddr is configured
	"time"

	"github.com/ethpandaops/aerosense/pkg/api"
	"github.com/ethpandaops/aerosense/pkg/cache"
	"github.com/ethpandaops/aerosense/pkg/clickhouse"
	"github.com/ethpandaops/aerosense/pkg/dashboard"
	"github.com/ethpandaops/aerosense/pkg/frontend"
	"github.com/ethpandaops/aerosense/pkg/observability"
	"github.com/ethpandaops/aerosense/pkg/queries"
	aeroredis "github.com/ethpandaops/aerosense/pkg/redis"
	"github.com/ethpandaops/aerosense/pkg/selectors"
	"github.com/ethpandaops/aerosense/pkg/warmer"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const warmerQueue = "warmer"

// Service encapsulates the dashboard backend
type Service struct {
	config *Config
	log    logrus.FieldLogger

	chClient  clickhouse.ClientInterface
	source    *queries.Client
	cache     *cache.Cache
	janitor   *cache.Janitor
	dashboard *dashboard.Service
	selectors *selectors.Graph
	api       api.Service
	warmer    warmer.Service

	// Servers
	healthServer *http.Server
	pprofServer  *http.Server

	redisClient *redis.Client
}

// NewService builds every component from cfg without starting any of them
func NewService(log logrus.FieldLogger, cfg *Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Service{
		config: cfg,
		log:    log.WithField("service", "engine"),
	}

	if cfg.needsRedis() {
		opt, err := cfg.Redis.Options()
		if err != nil {
			return nil, err
		}

		s.redisClient = redis.NewClient(opt)
	}

	chClient, err := clickhouse.NewClient(log, &cfg.ClickHouse)
	if err != nil {
		return nil, fmt.Errorf("failed to create ClickHouse client: %w", err)
	}
	s.chClient = chClient

	s.source, err = queries.NewClient(log, chClient, &cfg.Queries)
	if err != nil {
		return nil, fmt.Errorf("failed to create query client: %w", err)
	}

	s.cache, s.janitor, err = newCache(log, &cfg.Cache, &cfg.Redis, s.redisClient, cache.WithFlightTimeout(cfg.ClickHouse.QueryTimeout))
	if err != nil {
		return nil, err
	}

	ttl, err := cfg.Cache.TTLPolicy()
	if err != nil {
		return nil, err
	}

	pressureWindow, err := cfg.Cache.PressureWindowPolicy()
	if err != nil {
		return nil, err
	}

	s.dashboard = dashboard.NewService(log, s.source, s.cache, &cfg.Dashboard, ttl, pressureWindow)

	s.selectors, err = selectors.NewGraph(log, s.dashboard, s.dashboard.Tabs())
	if err != nil {
		return nil, fmt.Errorf("failed to build selector graph: %w", err)
	}

	var frontendHandler http.Handler
	if cfg.Frontend.Enabled {
		frontendHandler, err = frontend.NewHandler()
		if err != nil {
			return nil, fmt.Errorf("failed to create frontend handler: %w", err)
		}
	}

	s.api = api.NewService(&cfg.API, s.dashboard, s.selectors, frontendHandler, log)

	if cfg.Warmer.Enabled {
		asynqOpt, err := cfg.Redis.AsynqOptions()
		if err != nil {
			return nil, err
		}

		s.warmer, err = warmer.NewService(log, &cfg.Warmer, asynqOpt, cfg.Redis.PrefixQueue(warmerQueue), s.dashboard)
		if err != nil {
			return nil, fmt.Errorf("failed to create warmer service: %w", err)
		}
	}

	return s, nil
}

// newCache picks the store for the configured backend. The janitor is nil
// for stores with native expiry.
func newCache(log logrus.FieldLogger, cfg *cache.Config, redisCfg *aeroredis.Config, client *redis.Client, opts ...cache.Option) (*cache.Cache, *cache.Janitor, error) {
	switch cfg.Backend {
	case cache.BackendRedis:
		if client == nil {
			return nil, nil, ErrRedisRequired
		}

		return cache.New(log, cache.NewRedisStore(client, redisCfg.Prefix), opts...), nil, nil
	default:
		c := cache.New(log, cache.NewMemoryStore(), opts...)

		janitor, err := cache.NewJanitor(log, c, cfg.JanitorSchedule)
		if err != nil {
			return nil, nil, err
		}

		return c, janitor, nil
	}
}

// Dashboard exposes the plot service, mainly for CLI commands
func (a *Service) Dashboard() *dashboard.Service {
	return a.dashboard
}

// Start starts every enabled component
func (a *Service) Start(ctx context.Context) error {
	a.log.Info("Starting Aerosense...")

	observability.StartMetricsServer(a.log, a.config.MetricsAddr)

	if a.config.HealthCheckAddr != "" {
		a.startHealthCheck()
	}

	if a.config.PProfAddr != "" {
		a.startPProf()
	}

	if err := a.chClient.Start(); err != nil {
		return fmt.Errorf("failed to start ClickHouse client: %w", err)
	}

	// Plots for a missing table fail per request, so only warn here
	if err := a.source.CheckTables(ctx); err != nil {
		a.log.WithError(err).Warn("Warehouse schema check failed")
	}

	if a.redisClient != nil {
		if err := a.redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
	}

	if a.janitor != nil {
		a.janitor.Start()
	}

	if a.warmer != nil {
		if err := a.warmer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start warmer: %w", err)
		}
	}

	if err := a.api.Start(ctx); err != nil {
		return fmt.Errorf("failed to start API and frontend service: %w", err)
	}

	a.log.Info("Aerosense started successfully")

	return nil
}

// Stop gracefully shuts down every component
func (a *Service) Stop() error {
	a.log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopService := func(name string, stopFunc func() error) {
		if err := stopFunc(); err != nil {
			a.log.WithError(err).Errorf("Failed to stop %s", name)
		}
	}

	// Stop accepting requests before tearing down what serves them
	if a.api != nil {
		stopService("API and frontend service", a.api.Stop)
	}

	if a.warmer != nil {
		stopService("warmer service", a.warmer.Stop)
	}

	if a.janitor != nil {
		a.janitor.Stop()
	}

	if a.redisClient != nil {
		stopService("Redis client", a.redisClient.Close)
	}

	if a.chClient != nil {
		if err := a.chClient.Stop(); err != nil {
			a.log.WithError(err).Error("Failed to stop ClickHouse client")
			return err
		}
	}

	stopService("metrics server", func() error { return observability.StopMetricsServer(ctx) })

	if a.healthServer != nil {
		stopService("health check server", func() error { return a.healthServer.Shutdown(ctx) })
	}
	if a.pprofServer != nil {
		stopService("pprof server", func() error { return a.pprofServer.Shutdown(ctx) })
	}

	return nil
}

func (a *Service) startHealthCheck() {
	a.log.WithField("addr", a.config.HealthCheckAddr).Info("Starting health check server")

	a.healthServer = &http.Server{
		Addr:              a.config.HealthCheckAddr,
		Handler:           a.healthMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("Health check server failed")
		}
	}()
}

func (a *Service) healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Ready once the shared cache answers
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if a.redisClient != nil {
			if err := a.redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

func (a *Service) startPProf() {
	a.log.WithField("addr", a.config.PProfAddr).Info("Starting pprof server")

	a.pprofServer = &http.Server{
		Addr:              a.config.PProfAddr,
		ReadHeaderTimeout: 120 * time.Second,
	}

	go func() {
		if err := a.pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("Pprof server failed")
		}
	}()
}
