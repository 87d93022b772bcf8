package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vcscsvcscs/medimind-backend/internal/alert"
	"github.com/vcscsvcscs/medimind-backend/internal/audit"
	"github.com/vcscsvcscs/medimind-backend/internal/azure"
	"github.com/vcscsvcscs/medimind-backend/internal/config"
	"github.com/vcscsvcscs/medimind-backend/internal/gamification"
	"github.com/vcscsvcscs/medimind-backend/internal/handler"
	"github.com/vcscsvcscs/medimind-backend/internal/jobs"
	"github.com/vcscsvcscs/medimind-backend/internal/metrics"
	"github.com/vcscsvcscs/medimind-backend/internal/middleware"
	"github.com/vcscsvcscs/medimind-backend/internal/pdf"
	"github.com/vcscsvcscs/medimind-backend/internal/reminder"
	"github.com/vcscsvcscs/medimind-backend/internal/repository"
	"github.com/vcscsvcscs/medimind-backend/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.Bool("blob_storage", cfg.Storage.Enabled()),
		zap.Bool("webhook", cfg.Notifications.WebhookURL != ""),
	)

	// Database
	pool, err := newPool(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	if err := repository.Migrate(context.Background(), pool); err != nil {
		logger.Fatal("Failed to apply database schema", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// Optional blob storage for tones and report archives
	var toneStore alert.ToneStore
	var reportArchive service.ReportArchive
	if cfg.Storage.Enabled() {
		blobClient, err := azure.NewBlobStorageClient(
			cfg.Storage.AccountName,
			cfg.Storage.AccountKey,
			cfg.Storage.Container,
			logger,
		)
		if err != nil {
			logger.Fatal("Failed to initialize Azure Blob Storage client", zap.Error(err))
		}
		toneStore = blobClient
		reportArchive = blobClient
	}

	// Repositories
	medicineRepo := repository.NewMedicineRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)
	auditLogger := audit.NewLogger(pool, logger)

	// Services
	engine := gamification.NewEngine(userRepo, gamification.NewMarkerStore(), appMetrics, logger)
	achievementService := service.NewAchievementService(medicineRepo, userRepo, engine, auditLogger, logger)
	medicineService := service.NewMedicineService(medicineRepo, userRepo, achievementService, auditLogger, logger)
	userService := service.NewUserService(userRepo, engine, achievementService, auditLogger, auditLogger, logger)
	hydrationService := service.NewHydrationService(userRepo, achievementService, auditLogger, logger)
	reportService := service.NewReportService(medicineRepo, userRepo, pdf.NewPDFGenerator(logger), reportArchive, auditLogger, logger)

	// Alerts
	toneLibrary := alert.NewLibrary(toneStore, cfg.Alerts.ToneSampleRate, logger)
	feed := alert.NewFeed(cfg.Alerts.FeedCapacity)

	var notifier alert.Notifier
	if cfg.Notifications.WebhookURL != "" {
		webhook, err := alert.NewWebhookNotifier(alert.WebhookConfig{
			URL:              cfg.Notifications.WebhookURL,
			Timeout:          cfg.Notifications.Timeout,
			FailureThreshold: cfg.Notifications.FailureThreshold,
			OpenTimeout:      cfg.Notifications.OpenTimeout,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize notification webhook", zap.Error(err))
		}
		notifier = webhook
	}

	deliverer := alert.NewDeliverer(
		alert.DelivererConfig{Urgent: cfg.Reminder.Urgent},
		userService,
		toneLibrary,
		feed,
		notifier,
		appMetrics,
		logger,
	)

	// Background workers
	scheduler := reminder.NewScheduler(
		reminder.Config{Interval: cfg.Reminder.Interval, WindowMinutes: cfg.Reminder.WindowMinutes},
		medicineService,
		deliverer,
		reminder.NewRegistry(),
		appMetrics,
		logger,
	)

	jobRunner := jobs.NewRunner(
		jobs.Config{
			ResetSchedule: cfg.Jobs.ResetSchedule,
			Timeout:       cfg.Jobs.Timeout,
			RetryInterval: cfg.Jobs.RetryInterval,
		},
		medicineRepo,
		userRepo,
		logger,
	)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// The runner clears a missed midnight reset before the first reminder tick
	if err := jobRunner.Start(); err != nil {
		logger.Fatal("Failed to start job runner", zap.Error(err))
	}
	if err := scheduler.Start(workerCtx); err != nil {
		logger.Fatal("Failed to start reminder scheduler", zap.Error(err))
	}

	// HTTP
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Recovery must be first
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.Server.AllowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.AuditClientMiddleware())
	r.Use(middleware.MetricsMiddleware(appMetrics))
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	handler.RegisterRoutes(r, handler.Handlers{
		Medicine:  handler.NewMedicineHandler(medicineService, reportService, logger),
		User:      handler.NewUserHandler(userService, logger),
		Hydration: handler.NewHydrationHandler(hydrationService, logger),
		Alert:     handler.NewAlertHandler(feed, toneLibrary, logger),
		Health:    handler.NewHealthHandler(pool, logger),
		Metrics:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	scheduler.Stop()
	jobRunner.Stop()
	stopWorkers()

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Server.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err == nil {
		zapCfg.Level = level
	}
	if cfg.Logging.Format == "json" || cfg.Logging.Format == "console" {
		zapCfg.Encoding = cfg.Logging.Format
	}

	return zapCfg.Build()
}

func newPool(cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
	}
	return pgxpool.NewWithConfig(context.Background(), poolCfg)
}
