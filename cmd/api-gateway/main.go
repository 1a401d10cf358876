package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	internalhandler "github.com/noah-isme/uni-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/uni-timetable-api/internal/middleware"
	"github.com/noah-isme/uni-timetable-api/internal/repository"
	"github.com/noah-isme/uni-timetable-api/internal/service"
	"github.com/noah-isme/uni-timetable-api/pkg/cache"
	"github.com/noah-isme/uni-timetable-api/pkg/config"
	"github.com/noah-isme/uni-timetable-api/pkg/database"
	"github.com/noah-isme/uni-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/uni-timetable-api/pkg/middleware/requestid"
)

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

	var runRepo *repository.TimetableRunRepository
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to initialise database", "error", err)
		}
		defer db.Close()
		runRepo = repository.NewTimetableRunRepository(db)
	}

	var resultCache *cache.ResultCache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to initialise redis", "error", err)
		}
		defer redisClient.Close()
		resultCache = cache.NewResultCache(redisClient, cfg.Redis.TTL)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(nil))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	validate := validator.New()
	timetableSvc := service.NewTimetableService(runStoreOrNil(runRepo), validate, logr, metricsSvc, cfg.Solver)
	timetableHandler := internalhandler.NewTimetableHandler(timetableSvc, runRepo, resultCache, cfg.Export.Enabled, logr)

	api := r.Group(cfg.APIPrefix)
	api.POST("/timetables/generate", timetableHandler.Generate)
	if runRepo != nil {
		api.GET("/timetables/runs", timetableHandler.ListRuns)
		api.GET("/timetables/runs/:id/slots", timetableHandler.GetRunSlots)
		api.DELETE("/timetables/runs/:id", timetableHandler.DeleteRun)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("starting api gateway", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server stopped", "error", err)
	}
}

// runStoreOrNil keeps the nil-interface pitfall out of the service wiring.
func runStoreOrNil(repo *repository.TimetableRunRepository) service.RunStore {
	if repo == nil {
		return nil
	}
	return repo
}
