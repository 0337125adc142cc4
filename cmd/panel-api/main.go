package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/unidesk/attendance-panel-api/api/swagger"
	"github.com/unidesk/attendance-panel-api/internal/handler"
	"github.com/unidesk/attendance-panel-api/internal/middleware"
	"github.com/unidesk/attendance-panel-api/internal/models"
	"github.com/unidesk/attendance-panel-api/internal/repository"
	"github.com/unidesk/attendance-panel-api/internal/service"
	"github.com/unidesk/attendance-panel-api/internal/upstream"
	"github.com/unidesk/attendance-panel-api/pkg/cache"
	"github.com/unidesk/attendance-panel-api/pkg/config"
	"github.com/unidesk/attendance-panel-api/pkg/logger"
	corsmiddleware "github.com/unidesk/attendance-panel-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unidesk/attendance-panel-api/pkg/middleware/requestid"
)

// @title Attendance Panel API
// @version 0.1.0
// @description Backend-for-frontend for the institution admin panel
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()

	cacheSvc := service.NewCacheService(nil, metricsSvc, cfg.ReferenceCache.TTL, logr, false)
	if cfg.ReferenceCache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, reference cache disabled", "error", err)
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(repo, metricsSvc, cfg.ReferenceCache.TTL, logr, true)
		}
	}

	upstreamClient := upstream.NewClient(cfg.Upstream, logr, metricsSvc)
	validate := validator.New()

	authSvc := service.NewAuthService(upstreamClient, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	workspaceSvc := service.NewWorkspaceService(upstreamClient, logr)
	referenceSvc := service.NewReferenceService(upstreamClient, cacheSvc, cfg.ReferenceCache.TTL, logr)
	settingsSvc := service.NewSettingsService(upstreamClient, logr)
	exportSvc := service.NewExportService(workspaceSvc, referenceSvc, logr, cfg.Export.Enabled)

	authHandler := handler.NewAuthHandler(authSvc)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceSvc)
	referenceHandler := handler.NewReferenceHandler(referenceSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/settings/change-password", settingsHandler.ChangePassword)

	staff := authed.Group("/staff")
	staff.Use(middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
	staff.GET("/workspace", workspaceHandler.Snapshot)
	staff.PUT("/workspace/scope", workspaceHandler.SetScope)
	staff.POST("/workspace/refresh", workspaceHandler.Refresh)
	staff.POST("/workspace/form", workspaceHandler.OpenForm)
	staff.PATCH("/workspace/form/fields", workspaceHandler.SetField)
	staff.POST("/workspace/form/submit", workspaceHandler.Submit)
	staff.DELETE("/workspace/form", workspaceHandler.CancelForm)
	staff.DELETE("/workspace/employees/:id", workspaceHandler.DeleteEmployee)
	staff.GET("/workspace/export", exportHandler.Download)
	staff.GET("/reference/departments", referenceHandler.Departments)
	staff.GET("/reference/positions", referenceHandler.Positions)
	staff.GET("/reference/roles", referenceHandler.Roles)
	staff.GET("/reference/faculty", referenceHandler.Faculty)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
