package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/degreepath/scheduler/api/swagger"
	internalhandler "github.com/degreepath/scheduler/internal/handler"
	internalmiddleware "github.com/degreepath/scheduler/internal/middleware"
	"github.com/degreepath/scheduler/internal/models"
	"github.com/degreepath/scheduler/internal/repository"
	"github.com/degreepath/scheduler/internal/service"
	"github.com/degreepath/scheduler/pkg/cache"
	"github.com/degreepath/scheduler/pkg/config"
	"github.com/degreepath/scheduler/pkg/database"
	"github.com/degreepath/scheduler/pkg/logger"
	corsmiddleware "github.com/degreepath/scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/degreepath/scheduler/pkg/middleware/requestid"
)

// @title Course Schedule Optimizer API
// @version 0.1.0
// @description CP-SAT backed multi-semester course plan solver
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

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()
	catalogRepo := repository.NewCatalogRepository(db)

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("proposal cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Solver.ProposalCacheTTL, logr, cacheRepo != nil)

	planSvc := service.NewPlanService(validator.New(), cacheSvc, metricsSvc, logr, service.PlanConfig{
		DefaultTimeLimit: cfg.Solver.DefaultTimeLimit,
		DefaultScale:     cfg.Solver.DefaultScale,
		DefaultWorkers:   cfg.Solver.DefaultWorkers,
		MaxVariables:     cfg.Solver.MaxVariables,
		MaxConstraints:   cfg.Solver.MaxConstraints,
		ProposalCacheTTL: cfg.Solver.ProposalCacheTTL,
	})
	planHandler := internalhandler.NewPlanHandler(planSvc, catalogRepo)

	authSvc := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            "planner-api",
		Audience:          "planner-clients",
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	plans := api.Group("/plans")
	plans.Use(internalmiddleware.JWT(authSvc))
	plans.Use(internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleAdvisor, models.RoleStudent))
	plans.Use(internalmiddleware.WithResponseMeta())
	plans.POST("/solve", planHandler.Solve)
	plans.POST("/solve/:term_id", planHandler.SolveByTerm)
	plans.POST("/export", planHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("planner-api starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server exited", "error", err)
	}
}
