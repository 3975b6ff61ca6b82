package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kode4food/courier"
	"github.com/kode4food/courier/internal/autonav"
	"github.com/kode4food/courier/internal/config"
	"github.com/kode4food/courier/internal/flow"
	"github.com/kode4food/courier/internal/metrics"
	"github.com/kode4food/courier/internal/reference"
	"github.com/kode4food/courier/internal/screens"
	"github.com/kode4food/courier/internal/server"
	"github.com/kode4food/courier/internal/socket"
	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/log"
)

type app struct {
	cfg        *config.Config
	registry   *prometheus.Registry
	metrics    *metrics.Metrics
	source     reference.ClosableSource
	cache      *reference.RedisCache
	store      *flow.Store
	socket     *socket.Client
	engine     *autonav.Engine
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrLoadConfig      = errors.New("failed to load configuration")
	ErrOpenReference   = errors.New("failed to open reference source")
	ErrConnectCache    = errors.New("failed to connect reference cache")
	ErrConnectSocket   = errors.New("failed to connect event socket")
	ErrCreateStore     = errors.New("failed to create flow store")
	ErrCreateInspector = errors.New("failed to create inspector")
)

func serve(opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	a := &app{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	a.setupLogging()
	defer a.shutdown()

	if err := a.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		return err
	}
	return nil
}

func loadConfig(opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(opts.envFiles...); err != nil {
		return nil, err
	}
	cfg := config.NewDefaultConfig()
	if opts.configPath != "" {
		if err := cfg.LoadFromFile(opts.configPath); err != nil {
			return nil, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.mode != "" {
		cfg.Mode = opts.mode
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) run() error {
	if err := a.initializeMetrics(); err != nil {
		return err
	}
	deps, err := a.initializeReference()
	if err != nil {
		return err
	}
	if err := a.initializeFlow(deps); err != nil {
		return err
	}
	if err := a.startServer(); err != nil {
		return err
	}

	signal.Notify(a.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.quit)

	var done <-chan struct{}
	if a.socket != nil {
		done = a.socket.Done()
	}
	select {
	case <-a.quit:
	case <-done:
		slog.Warn("Event socket closed")
	}
	return nil
}

func (a *app) setupLogging() {
	level := log.ParseLevel(a.cfg.LogLevel)
	logger := log.NewWithLevel(
		courier.Name, a.cfg.Mode, courier.Version, level,
	)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Courier starting",
		slog.String("log_level", a.cfg.LogLevel),
		slog.String("mode", a.cfg.Mode))

	slog.Info("Configuration loaded",
		slog.String("api_host", a.cfg.APIHost),
		slog.Int("api_port", a.cfg.APIPort),
		slog.String("socket_url", a.cfg.SocketURL),
		slog.String("reference_url", a.cfg.Reference.BaseURL),
		slog.String("cache_redis_addr", a.cfg.Cache.Addr),
		slog.Int("cache_redis_db", a.cfg.Cache.DB),
		slog.Duration("reset_grace_period", a.cfg.ResetGracePeriod))
}

func (a *app) initializeMetrics() error {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(a.registry)
	if err != nil {
		return err
	}
	a.metrics = m
	return nil
}

func (a *app) initializeReference() (flow.Dependencies, error) {
	deps := flow.Dependencies{Metrics: a.metrics}
	if a.cfg.Reference.BaseURL == "" {
		slog.Info("Reference prefetching disabled")
		return deps, nil
	}

	ctx := context.Background()
	src, err := reference.OpenSource(ctx, a.cfg.Reference.BaseURL)
	if err != nil {
		return deps, fmt.Errorf("%w: %w", ErrOpenReference, err)
	}
	a.source = src

	var cache reference.Cache
	if a.cfg.Cache.Addr != "" {
		a.cache, err = reference.NewRedisCache(a.cfg.Cache)
		if err != nil {
			return deps, fmt.Errorf("%w: %w", ErrConnectCache, err)
		}
		if err := a.cache.Ping(ctx); err != nil {
			slog.Warn("Reference cache unreachable", log.Error(err))
		}
		cache = a.cache
	}

	loaders, err := reference.NewLoaders(src, cache)
	if err != nil {
		return deps, err
	}
	ld := loaders.Dependencies()
	deps.Prefetchers = ld.Prefetchers
	deps.RolePrefetchers = ld.RolePrefetchers
	return deps, nil
}

func (a *app) initializeFlow(deps flow.Dependencies) error {
	store, err := flow.New(flow.NewSession(), a.cfg, deps)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateStore, err)
	}
	a.store = store

	apps := []autonav.Applier{
		autonav.WithMetrics(a.metrics),
		autonav.WithRequestedHook(func(ev api.JobRequestedEvent) {
			slog.Info("Job requested",
				log.JobID(ev.JobID),
				log.Service(ev.Service))
		}),
	}
	if a.cfg.SocketURL != "" {
		a.socket, err = socket.Dial(context.Background(), a.cfg.SocketURL)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConnectSocket, err)
		}
		apps = append(apps, autonav.WithSubscriber(a.socket))
	}

	a.engine = autonav.New(a.store, a.cfg, apps...)
	a.engine.Start()

	if a.socket != nil {
		a.socket.Handle(func(ev api.JobEvent) {
			if ev.Type != api.EventJobRequested {
				return
			}
			if err := a.engine.Enqueue(ev); err != nil {
				slog.Warn("Dropping event",
					log.Event(ev.Type),
					log.Error(err))
			}
		})
	}

	slog.Info("Session started", log.Session(a.store.Session().ID()))
	return nil
}

func (a *app) startServer() error {
	reg, err := screens.Default()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateInspector, err)
	}
	srv, err := server.NewServer(server.Dependencies{
		Store:    a.store,
		Engine:   a.engine,
		Screens:  reg,
		Gatherer: a.registry,
		Name:     courier.Name,
		Version:  courier.Version,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateInspector, err)
	}

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.cfg.APIHost, a.cfg.APIPort),
		Handler: srv.SetupRoutes(),
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", a.httpServer.Addr))
		err := a.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
	return nil
}

func (a *app) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), a.cfg.ShutdownTimeout,
	)
	defer cancel()

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			slog.Error("Shutdown failed", log.Error(err))
		}
	}
	if a.engine != nil {
		a.engine.Close()
	}
	if a.socket != nil {
		_ = a.socket.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.source != nil {
		_ = a.source.Close()
	}

	slog.Info("Server exited")
}
