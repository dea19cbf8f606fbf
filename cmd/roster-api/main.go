package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tvgw-tennis/winterplan-api/api/swagger"
	"github.com/tvgw-tennis/winterplan-api/internal/handler"
	"github.com/tvgw-tennis/winterplan-api/internal/middleware"
	"github.com/tvgw-tennis/winterplan-api/internal/repository"
	"github.com/tvgw-tennis/winterplan-api/internal/service"
	"github.com/tvgw-tennis/winterplan-api/pkg/cache"
	"github.com/tvgw-tennis/winterplan-api/pkg/config"
	"github.com/tvgw-tennis/winterplan-api/pkg/database"
	"github.com/tvgw-tennis/winterplan-api/pkg/export"
	"github.com/tvgw-tennis/winterplan-api/pkg/logger"
	corsmiddleware "github.com/tvgw-tennis/winterplan-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tvgw-tennis/winterplan-api/pkg/middleware/requestid"
)

// @title TVGW Winterplan API
// @version 1.0.0
// @description Constraint checking and slot filling for the winter training roster
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Audit.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, audit caching disabled", "error", err)
			redisClient = nil
		}
	}

	planRepo := repository.NewPlanRepository(db)
	playerRepo := repository.NewPlayerRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	prefs, err := playerRepo.ListPreferences(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to load player preferences", "error", err)
	}
	overrides, err := playerRepo.ListOverrides(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to load player overrides", "error", err)
	}
	ranks, err := playerRepo.ListRanks(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to load player ranks", "error", err)
	}

	refSvc, err := service.NewReferenceService(cfg.Season.Start, cfg.Season.End, logr)
	if err != nil {
		logr.Sugar().Fatalw("invalid season bounds", "error", err)
	}
	ref, err := refSvc.Build(prefs, overrides, ranks)
	if err != nil {
		logr.Sugar().Fatalw("failed to build season reference", "error", err)
	}
	if len(ref.Warnings) > 0 {
		logr.Sugar().Warnw("reference data has parse warnings", "count", len(ref.Warnings))
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	auditSvc := service.NewAuditService(ref, cacheRepo, cfg.Audit.CacheTTL, metricsSvc, logr)
	populateSvc := service.NewPopulateService(ref, planRepo, planRepo, planRepo, validate, metricsSvc, logr, service.PopulateConfig{
		ProposalTTL: cfg.Populate.ProposalTTL,
	})
	planSvc := service.NewPlanService(ref, planRepo, logr)
	costSvc := service.NewCostService(ref, planRepo, cfg.Costs.HourlyRate, logr)
	analyticsSvc := service.NewAnalyticsService(ref, planRepo, metricsSvc, logr)
	exportSvc := service.NewExportService(auditSvc, planRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	exportSvc.ArchiveTo(cfg.Reports.StorageDir)

	auditHandler := handler.NewAuditHandler(auditSvc, planRepo)
	populateHandler := handler.NewPopulateHandler(populateSvc)
	planHandler := handler.NewPlanHandler(planSvc)
	reportHandler := handler.NewReportHandler(exportSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, costSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/audit", auditHandler.Audit)

		if cfg.Populate.Enabled {
			api.POST("/populate", populateHandler.Populate)
			api.POST("/populate/save", populateHandler.Save)
		}

		api.GET("/plan/weeks", planHandler.Week)
		api.GET("/plan/weeks/:year/:week", planHandler.WeekByPath)
		api.GET("/plan/players/:name", planHandler.PlayerMatches)

		api.GET("/reports/violations.csv", reportHandler.ViolationsCSV)
		api.GET("/reports/violations.pdf", reportHandler.ViolationsPDF)
		api.GET("/reports/usage.csv", reportHandler.UsageCSV)

		api.GET("/analysis/distribution", analyticsHandler.Distribution)
		api.GET("/analysis/variety", analyticsHandler.Variety)
		api.GET("/analysis/pairing", analyticsHandler.Pairing)
		api.GET("/analysis/costs", analyticsHandler.Costs)
		api.GET("/analysis/system", analyticsHandler.System)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "players", len(ref.Players()))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
