package app

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/amankumar-in/univance/api/handler"
	"github.com/amankumar-in/univance/internal/clients"
	"github.com/amankumar-in/univance/internal/config"
	"github.com/amankumar-in/univance/internal/infrastructure/monitor"
	"github.com/amankumar-in/univance/internal/infrastructure/outbox"
	pgInfra "github.com/amankumar-in/univance/internal/infrastructure/postgres"
	redisInfra "github.com/amankumar-in/univance/internal/infrastructure/redis"
	"github.com/amankumar-in/univance/internal/middleware"
	"github.com/amankumar-in/univance/internal/router"
	"github.com/amankumar-in/univance/internal/services"
	"github.com/amankumar-in/univance/internal/services/lifecycle"
	"github.com/amankumar-in/univance/pkg/httpcontext"
	"github.com/amankumar-in/univance/pkg/logger"
	redisRepo "github.com/amankumar-in/univance/repository/redis"
)

const monitorInterval = 10 * time.Second

// App holds the infrastructure every service boots with.
type App struct {
	Service string
	Config  *config.Config
	Logger  *zap.Logger
	Ctx     context.Context

	Pool          *pgxpool.Pool
	Redis         *goRedis.Client
	Monitor       *monitor.Monitor
	Outbox        *services.OutboxProcessor
	Downstream    *services.Downstream
	Scheduler     *services.Scheduler
	Points        *clients.PointsClient
	Notifications *clients.NotificationClient

	manager *lifecycle.Manager
	cancel  context.CancelFunc
}

// Boot loads configuration and connects the shared infrastructure. Failures are fatal.
func Boot(service string) *App {
	cfg, err := config.Load(service)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  service,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}

	appCtx, cancel := context.WithCancel(context.Background())
	a := &App{
		Service: service,
		Config:  cfg,
		Logger:  zapLogger,
		Ctx:     appCtx,
		manager: lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger),
		cancel:  cancel,
	}
	a.manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	a.Pool, err = pgInfra.NewPool(appCtx, service, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	a.manager.Register(lifecycle.PhaseStorage, "postgres", func(ctx context.Context) error {
		pgInfra.Close(a.Pool, zapLogger)
		return nil
	})

	a.Redis, err = redisInfra.NewClient(appCtx, service, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	a.manager.Register(lifecycle.PhaseStorage, "redis", func(ctx context.Context) error {
		return a.Redis.Close()
	})

	store, err := outbox.Open(cfg.Outbox.Path)
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	a.manager.Register(lifecycle.PhaseStorage, "outbox_store", func(ctx context.Context) error {
		return store.Close()
	})

	a.Monitor = monitor.New(a.Pool, a.Redis, store, monitorInterval, zapLogger)
	a.Monitor.Start()
	a.manager.Register(lifecycle.PhaseWorkers, "monitor", func(ctx context.Context) error {
		a.Monitor.Stop()
		return nil
	})

	a.Outbox = services.NewOutboxProcessor(
		store,
		a.Monitor,
		redisRepo.NewDeliveryLog(a.Redis, service, 0),
		zapLogger,
		services.ProcessorConfig{
			Interval:       cfg.Outbox.SyncInterval,
			BatchSize:      cfg.Outbox.BatchSize,
			MaxRetries:     cfg.Outbox.MaxRetry,
			DeadRetention:  time.Duration(cfg.Outbox.RetentionHours) * time.Hour,
			DeliverTimeout: cfg.Services.Timeout,
		},
	)
	a.Downstream = services.NewDownstream(a.Outbox)
	a.Scheduler = services.NewScheduler(zapLogger, time.Minute)

	httpClient := &fasthttp.Client{
		Name:                cfg.AppName,
		MaxConnsPerHost:     64,
		ReadTimeout:         cfg.Services.Timeout,
		WriteTimeout:        cfg.Services.Timeout,
		MaxIdleConnDuration: time.Minute,
	}
	a.Points = clients.NewPointsClient(httpClient, clients.Config{
		BaseURL: cfg.Services.PointsURL,
		Timeout: cfg.Services.Timeout,
	})
	a.Notifications = clients.NewNotificationClient(httpClient, clients.Config{
		BaseURL: cfg.Services.NotificationURL,
		Timeout: cfg.Services.Timeout,
	})

	return a
}

// HandlerOptions returns the settings shared by every API handler.
func (a *App) HandlerOptions() apiHandler.Options {
	return apiHandler.Options{
		Adapter:    httpcontext.NewAdapter(a.Config.Context.RequestTimeout),
		Logger:     a.Logger,
		Production: a.Config.IsProduction(),
	}
}

// RouterOptions returns the routing settings for a service mounted at prefix.
func (a *App) RouterOptions(prefix string) router.Options {
	return router.Options{
		Prefix:        prefix,
		Health:        apiHandler.NewHealthHandler(a.Service, a.Monitor, a.HandlerOptions()),
		Auth:          middleware.JWTAuth(a.Config.JWT.Secret, a.Logger),
		EnableMetrics: a.Config.HTTP.EnableMetrics,
		EnablePprof:   a.Config.HTTP.EnablePprof,
		Production:    a.Config.IsProduction(),
		UploadsDir:    a.Config.UploadsDir,
	}
}

// Schedule registers a maintenance job; an invalid spec is fatal.
func (a *App) Schedule(name, spec string, job services.Job) {
	if err := a.Scheduler.Register(name, spec, job); err != nil {
		a.Logger.Fatal("job registration failed", zap.String("job", name), zap.Error(err))
	}
}

// Run starts the background workers and the HTTP server, then blocks until a shutdown signal.
func (a *App) Run(handler fasthttp.RequestHandler) {
	defer a.Logger.Sync()
	defer a.cancel()

	a.Outbox.Start()
	a.manager.RegisterStopper(lifecycle.PhaseWorkers, "outbox_processor", a.Outbox)
	a.manager.Register(lifecycle.PhaseWorkers, "outbox_flush", a.Outbox.Drain)
	a.Scheduler.Start()
	a.manager.RegisterStopper(lifecycle.PhaseWorkers, "scheduler", a.Scheduler)

	server := &fasthttp.Server{
		Handler:      handler,
		ReadTimeout:  a.Config.HTTP.ReadTimeout,
		WriteTimeout: a.Config.HTTP.WriteTimeout,
		IdleTimeout:  a.Config.HTTP.IdleTimeout,
		Concurrency:  a.Config.HTTP.MaxConn,
		Name:         a.Config.AppName,
	}

	go func() {
		a.Logger.Info("server started", zap.String("address", a.Config.Address()))
		if err := server.ListenAndServe(a.Config.Address()); err != nil {
			a.Logger.Fatal("server crashed", zap.Error(err))
		}
	}()

	a.manager.Register(lifecycle.PhaseIngress, "http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-a.Ctx.Done()

	if err := a.manager.Shutdown(context.Background()); err != nil {
		a.Logger.Error("graceful shutdown error", zap.Error(err))
	}
}
