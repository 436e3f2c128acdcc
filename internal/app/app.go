package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/mdnspanel/internal/config"
	"github.com/MrSnakeDoc/mdnspanel/internal/domain"
	"github.com/MrSnakeDoc/mdnspanel/internal/eventlog"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver"
	"github.com/MrSnakeDoc/mdnspanel/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mdnspanel/internal/logger"
	"github.com/MrSnakeDoc/mdnspanel/internal/metrics"
	"github.com/MrSnakeDoc/mdnspanel/internal/netif"
	"github.com/MrSnakeDoc/mdnspanel/internal/redis"
	"github.com/MrSnakeDoc/mdnspanel/internal/registry"
	"github.com/MrSnakeDoc/mdnspanel/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/mdnspanel/internal/store/redis"
	"github.com/MrSnakeDoc/mdnspanel/internal/telemetry"
	"github.com/MrSnakeDoc/mdnspanel/internal/transport"
	"github.com/MrSnakeDoc/mdnspanel/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server

	release     func()
	tracing     *telemetry.Provider
	redisClient *goredis.Client

	registry   *registry.Synchronizer
	eventlog   *eventlog.Buffer
	interfaces *netif.Cache

	refresher *scheduler.InterfaceRefresher
	backup    *scheduler.ConfigBackup
	gc        *scheduler.BackupCollector
}

// New wires the panel: transport (with tracing and metrics), the three
// synchronized components, the optional Redis archive and the HTTP server.
// Nothing talks to the backend until Run.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: loggerClient}

	tracing, err := telemetry.NewProvider(cfg.TracingEnabled, os.Stdout, "mdnspanel", version.Version)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracing = tracing

	tr, release, err := dialTransport(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}
	a.release = release

	collector := metrics.NewCollector(metrics.Sources{
		Summary:    func() domain.StatusSummary { return a.registry.Summary() },
		LogLength:  func() int { return a.eventlog.Len() },
		Interfaces: func() int { return len(a.interfaces.Interfaces()) },
	})
	tr = transport.Instrumented(transport.Traced(tr, tracing.Tracer("mdnspanel/transport")), collector)

	metricsHandler, err := metrics.Handler(collector)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	a.registry = registry.New(tr, logger.Named(loggerClient, "registry"))

	logOpts := []eventlog.Option{eventlog.WithRetention(cfg.LogRetention)}

	var archive deps.Archive
	if cfg.ArchiveEnabled() {
		// Fail fast: a configured but unreachable Redis is an operator error.
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.redisClient = client
		loggerClient.Info("Redis initialized successfully")

		store := redisstore.NewStore(client, cfg.ArchiveSize)
		archive = store
		logOpts = append(logOpts, eventlog.WithArchiver(store))
		a.backup = scheduler.NewConfigBackup(a.registry, store, loggerClient, cfg.BackupInterval)
		a.gc = scheduler.NewBackupCollector(store, loggerClient, cfg.BackupGCInterval, cfg.BackupRetention)
	} else {
		loggerClient.Info("Redis not configured, log archive and backups disabled")
	}

	a.eventlog = eventlog.New(tr, logger.Named(loggerClient, "eventlog"), logOpts...)
	a.interfaces = netif.New(tr)
	a.refresher = scheduler.NewInterfaceRefresher(a.interfaces, loggerClient, cfg.RefreshInterval)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		Transport:      cfg.Transport,
		RequestTimeout: cfg.CallTimeout + time.Second,
		Registry:       a.registry,
		EventLog:       a.eventlog,
		Interfaces:     a.interfaces,
		Archive:        archive,
		Metrics:        metricsHandler,
	}
	a.server = httpserver.New(cfg, loggerClient, d)

	return a, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting mdnspanel %s on %s", version.Version, a.cfg.ListenAddr)
	a.logger.Infof("mdnspanel %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.close()

	// The panel serves while the backend is unreachable; /readyz reports it.
	go a.startWithRetry(ctx, "registry", a.registry.Start)
	go a.startWithRetry(ctx, "eventlog", a.eventlog.Start)

	if err := a.refresher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start interface refresher: %w", err)
	}
	if a.cfg.RefreshInterval > 0 {
		a.logger.Info("periodic interface refresh enabled",
			logger.Duration("interval", a.cfg.RefreshInterval))
	}

	if a.backup != nil {
		if err := a.backup.Start(ctx); err != nil {
			return fmt.Errorf("failed to start configuration backup: %w", err)
		}
		if err := a.gc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start backup collector: %w", err)
		}
		a.logger.Info("configuration backups started",
			logger.Duration("interval", a.cfg.BackupInterval),
			logger.Duration("retention", a.cfg.BackupRetention))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.refresher.Stop()
	if a.backup != nil {
		a.backup.Stop()
		a.gc.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	if err := a.tracing.Shutdown(shutdownCtx); err != nil {
		a.logger.Warnf("failed to flush traces: %v", err)
	}

	a.logger.Info("✅ mdnspanel stopped cleanly")
	return nil
}

// startWithRetry calls start until it succeeds or ctx is done. A failed
// Start holds no subscription, so retrying is safe.
func (a *App) startWithRetry(ctx context.Context, name string, start func(context.Context) error) {
	wait := time.Second
	for attempt := 1; ; attempt++ {
		err := start(ctx)
		if err == nil {
			if attempt > 1 {
				a.logger.Info("component started after retries",
					logger.String("component", name),
					logger.Int("attempts", attempt))
			}
			return
		}
		a.logger.Warn("component start failed, retrying",
			logger.String("component", name),
			logger.Int("attempt", attempt),
			logger.Duration("retry_in", wait),
			logger.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		wait = min(wait*2, 30*time.Second)
	}
}

// close releases subscriptions, the transport and Redis. Safe on a partly built App.
func (a *App) close() {
	if a.eventlog != nil {
		a.eventlog.Close()
	}
	if a.registry != nil {
		a.registry.Close()
	}
	if a.release != nil {
		a.release()
		a.release = nil
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
		a.redisClient = nil
	}
}
