package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/quest-planner-api/api/swagger"
	"github.com/noah-isme/quest-planner-api/internal/handler"
	"github.com/noah-isme/quest-planner-api/internal/middleware"
	"github.com/noah-isme/quest-planner-api/internal/models"
	"github.com/noah-isme/quest-planner-api/internal/repository"
	"github.com/noah-isme/quest-planner-api/internal/service"
	"github.com/noah-isme/quest-planner-api/pkg/cache"
	"github.com/noah-isme/quest-planner-api/pkg/config"
	"github.com/noah-isme/quest-planner-api/pkg/database"
	"github.com/noah-isme/quest-planner-api/pkg/jobs"
	"github.com/noah-isme/quest-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/quest-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/quest-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/quest-planner-api/pkg/storage"
)

// @title Quest Planner API
// @version 1.0.0
// @description Task scheduling and day planning service
// @BasePath /api/v1
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	planRepo := repository.NewPlanRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Plans.CacheTTL, logr, true)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "quest-planner-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, validate, logr)
	prefSvc := service.NewPreferenceService(prefRepo, validate, logr)
	plannerSvc := service.NewPlannerService(taskRepo, prefRepo, planRepo, db, cacheSvc, metricsSvc, validate, logr, service.PlannerServiceConfig{
		ProposalTTL:       cfg.Planner.ProposalTTL,
		WindowDays:        cfg.Planner.WindowDays,
		Granularity:       cfg.Planner.Granularity,
		MaxSwapAttempts:   cfg.Planner.MaxSwapAttempts,
		DailyCapMinutes:   cfg.Planner.DailyCapMinutes,
		OptimizeThreshold: cfg.Planner.OptimizeThreshold,
		RandomSeed:        cfg.Planner.RandomSeed,
		CacheTTL:          cfg.Plans.CacheTTL,
	})

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	prefHandler := handler.NewPreferenceHandler(prefSvc)
	plannerHandler := handler.NewPlannerHandler(plannerSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	var exportHandler *handler.ExportHandler
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("export storage init failed", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.JWT.Secret, 24*time.Hour)
		exportJobRepo := repository.NewExportJobRepository(db)
		exporter := service.NewExportService(planRepo, taskRepo, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: 24 * time.Hour,
		}, logr, nil, nil, nil)
		worker := service.NewExportWorker(exportJobRepo, exporter, cfg.Exports.WorkerRetries, logr)
		exportQueue = jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportJobSvc := service.NewExportJobService(exportJobRepo, exportQueue, exporter, validate, logr, service.ExportJobServiceConfig{
			ResultTTL:  24 * time.Hour,
			MaxRetries: cfg.Exports.WorkerRetries,
		})
		exportHandler = handler.NewExportHandler(exportJobSvc)

		exportQueue.Start(ctx)
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/healthz", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.POST("/auth/change-password", authHandler.ChangePassword)
	secured.GET("/auth/me", authHandler.Me)

	admin := secured.Group("")
	admin.Use(middleware.RequireRoles(models.RoleAdmin))
	admin.GET("/users", userHandler.List)
	admin.POST("/users", userHandler.Create)
	admin.PUT("/users/:id", userHandler.Update)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.GET("/metrics/system", metricsHandler.System)
	secured.GET("/users/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), userHandler.Get)

	secured.GET("/tasks", taskHandler.List)
	secured.POST("/tasks", taskHandler.Create)
	secured.GET("/tasks/:id", taskHandler.Get)
	secured.PATCH("/tasks/:id", taskHandler.Update)
	secured.DELETE("/tasks/:id", taskHandler.Delete)

	secured.POST("/plans/generate", plannerHandler.Generate)
	secured.GET("/plans", plannerHandler.List)
	secured.POST("/plans", plannerHandler.Save)
	secured.GET("/plans/:id", plannerHandler.Get)
	secured.POST("/plans/:id/publish", middleware.Audit(userRepo, models.AuditActionPlanPublish, "plans"), plannerHandler.Publish)
	secured.DELETE("/plans/:id", middleware.Audit(userRepo, models.AuditActionPlanDelete, "plans"), plannerHandler.Delete)

	secured.GET("/preferences", prefHandler.Get)
	secured.PUT("/preferences", prefHandler.Upsert)

	if exportHandler != nil {
		secured.POST("/exports", exportHandler.Create)
		secured.GET("/exports/:id", exportHandler.Status)
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	if exportQueue != nil {
		exportQueue.Stop()
	}
}
