package server

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"dateplanner-api/core/cache"
	"dateplanner-api/core/config"
	"dateplanner-api/core/constants"
	"dateplanner-api/core/database"
	"dateplanner-api/core/logger"
	"dateplanner-api/core/metrics"
	"dateplanner-api/core/middleware"
	"dateplanner-api/core/queue"
	"dateplanner-api/core/scheduler"
	"dateplanner-api/modules/auth"
	"dateplanner-api/modules/calendar"
	"dateplanner-api/modules/couple"
	"dateplanner-api/modules/dateplan"
	"dateplanner-api/modules/notification"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const workerConcurrency = 10

// Run wires every module and serves until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.Server.Env, cfg.Server.LogLevel)

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient)

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()
	worker := queue.NewWorker(cfg.Redis, workerConcurrency)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	public := e.Group("/api/v1/public")
	private := e.Group("/api/v1/private")
	mw := middleware.NewMiddleware(redisCache)

	notifications := notification.Init(private, db, mw, queueClient)
	worker.Handle(constants.TaskTypeNotificationSend, notifications.HandleSendTask)

	calendarService := calendar.Init(private, db, mw, cfg, m)
	auth.Init(public, private, db, redisCache, mw, cfg, calendarService)
	coupleService := couple.Init(private, db, mw, notifications)
	dateplan.Init(public, private, mw, cfg, m, coupleService, calendarService, notifications)

	jobs := scheduler.New(constants.DefaultTimeout)
	if err := jobs.Register(scheduler.Job{
		Name:     "expire_couple_invitations",
		Schedule: "@hourly",
		Run:      coupleService.ExpireStaleInvitations,
	}); err != nil {
		return fmt.Errorf("register jobs: %w", err)
	}

	if err := worker.Start(); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	jobs.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server:Start", "addr", addr, "env", cfg.Server.Env)
		errCh <- e.Start(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	var serveErr error
	select {
	case serveErr = <-errCh:
	case sig := <-quit:
		logger.Info("Server:Shutdown", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	jobs.Stop(ctx)
	worker.Shutdown()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server:Shutdown:Error", "error", err)
	}

	if serveErr != nil && !stdErrors.Is(serveErr, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", serveErr)
	}
	logger.Info("Server:Stopped")
	return nil
}
