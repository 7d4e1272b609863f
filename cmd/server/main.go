package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/commoditydesk/riskengine/internal/cache"
	"github.com/commoditydesk/riskengine/internal/config"
	"github.com/commoditydesk/riskengine/internal/database"
	"github.com/commoditydesk/riskengine/internal/handlers"
	"github.com/commoditydesk/riskengine/internal/logging"
	"github.com/commoditydesk/riskengine/internal/models"
	"github.com/commoditydesk/riskengine/internal/services"
	"github.com/commoditydesk/riskengine/internal/telemetry"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	shutdownTelemetry, err := telemetry.Setup(context.Background(), "riskengine", cfg.Environment)
	if err != nil {
		logger.Fatalf("Failed to set up telemetry: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Errorf("Telemetry shutdown failed: %v", err)
		}
	}()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	// Repositories and cache
	priceRepo := database.NewPriceRepository(db.Pool)
	positionRepo := database.NewPositionRepository(db.Pool)
	reportRepo := database.NewReportRepository(db.Pool)

	cacheTTL := config.Duration(cfg.Analysis.CacheTTL, 15*time.Minute)
	analysisCache := cache.NewAnalysisCache(redis.Client, cacheTTL, logger)

	// Analytic services
	analysisService := services.NewMarketAnalysisService(priceRepo, analysisCache, logger)
	volatilityService := services.NewVolatilityService(analysisService, analysisCache, logger, cfg.Analysis.RollingWindow)
	correlationService := services.NewCorrelationService(analysisService, logger)
	seasonalityService := services.NewSeasonalityService(analysisService, logger)
	pnlService := services.NewPnLService(positionRepo, logger)
	stressService := services.NewStressTestService(positionRepo, logger)
	snapshotService := services.NewMarketSnapshotService(priceRepo, logger)
	alertMonitor := services.NewAlertMonitorService(logger)

	// Distribution
	sender, err := services.NewTelegramSender(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatalf("Failed to initialize telegram sender: %v", err)
	}
	distributionTimeout := config.Duration(cfg.Reports.DistributionTimeout, 30*time.Second)
	distributor := services.NewDistributor(sender, distributionTimeout, logger)

	limits := make(map[string]decimal.Decimal, len(cfg.Limits.Products))
	for product, limit := range cfg.Limits.Products {
		limits[product] = decimal.NewFromFloat(limit)
	}

	reportService := services.NewReportService(
		analysisService,
		volatilityService,
		pnlService,
		stressService,
		snapshotService,
		positionRepo,
		reportRepo,
		services.JSONRenderer{},
		distributor,
		cfg.Analysis.Symbols,
		limits,
		logger,
	)

	// Report scheduler
	scheduler := services.NewReportScheduler(services.NewCronClock(), reportService, services.ScheduleConfig{
		DailyCron:      cfg.Reports.DailyCron,
		WeeklyCron:     cfg.Reports.WeeklyCron,
		MonthlyCron:    cfg.Reports.MonthlyCron,
		Recipients:     cfg.Reports.Recipients,
		AutoDistribute: cfg.Reports.AutoDistribute,
		Format:         models.ReportFormat(cfg.Reports.Format),
		RunTimeout:     config.Duration(cfg.Reports.RunTimeout, 5*time.Minute),
	}, logger)
	if err := scheduler.Register(); err != nil {
		logger.Fatalf("Failed to register report schedules: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Alert thresholds from config
	thresholds := make(map[string]models.AlertThresholds, len(cfg.Alerts.Thresholds))
	for symbol, t := range cfg.Alerts.Thresholds {
		thresholds[symbol] = models.AlertThresholds{
			PriceMovePct:       t.PriceMovePct,
			VaRBreachThreshold: t.VaRBreachThreshold,
			StaleDataMaxAge:    config.Duration(t.StaleDataMaxAge, 24*time.Hour),
		}
	}

	// HTTP surface
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("riskengine"))

	analysisHandler := handlers.NewAnalysisHandler(analysisService, volatilityService, correlationService, seasonalityService, pnlService, logger)
	reportsHandler := handlers.NewReportsHandler(reportService, logger)
	alertsHandler := handlers.NewAlertsHandler(alertMonitor, priceRepo, cfg.Analysis.Symbols, thresholds, logger)
	healthHandler := handlers.NewHealthHandler(db, redis, logger)

	handlers.SetupRoutes(router, analysisHandler, reportsHandler, alertsHandler, healthHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
