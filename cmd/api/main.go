package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-gpa-api/api/swagger"
	"github.com/noah-isme/sma-gpa-api/internal/handler"
	"github.com/noah-isme/sma-gpa-api/internal/middleware"
	"github.com/noah-isme/sma-gpa-api/internal/repository"
	"github.com/noah-isme/sma-gpa-api/internal/service"
	"github.com/noah-isme/sma-gpa-api/pkg/cache"
	"github.com/noah-isme/sma-gpa-api/pkg/config"
	"github.com/noah-isme/sma-gpa-api/pkg/database"
	"github.com/noah-isme/sma-gpa-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-gpa-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-gpa-api/pkg/middleware/requestid"
)

// @title Student Grading API
// @version 1.0.0
// @description Students, courses, enrollments and credit-weighted GPA.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	deps := map[string]handler.Pinger{}

	studentRepo, courseRepo, db, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		deps["database"] = db
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.GPACache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("gpa cache disabled, redis unavailable", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, cfg.GPACache.Prefix, logr)
			defer repo.Close()
			cacheRepo = repo
			deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.GPACache.TTL, logr, cacheRepo != nil)

	validate := validator.New()
	locks := service.NewKeyLocker()
	studentSvc := service.NewStudentService(studentRepo, locks, cacheSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, locks, cacheSvc, validate, logr)
	gradingSvc := service.NewGradingService(studentRepo, courseRepo, locks, cacheSvc, metricsSvc, logr)
	reportSvc := service.NewReportService(studentRepo, courseRepo, nil, nil, logr)

	if cfg.SeedCourses {
		if _, err := courseSvc.SeedDefaults(ctx); err != nil {
			return fmt.Errorf("seed default courses: %w", err)
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, deps)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Students: handler.NewStudentHandler(studentSvc, gradingSvc),
		Courses:  handler.NewCourseHandler(courseSvc, gradingSvc),
		Reports:  handler.NewReportHandler(gradingSvc, reportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config) (service.StudentRepository, service.CourseRepository, *sqlx.DB, error) {
	if cfg.StorageDriver == config.StorageMemory {
		return repository.NewMemoryStudentRepository(), repository.NewMemoryCourseRepository(), nil, nil
	}
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}
	return repository.NewStudentRepository(db), repository.NewCourseRepository(db), db, nil
}
