package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/manpower-adp-api/api/swagger"
	"github.com/noah-isme/manpower-adp-api/internal/handler"
	"github.com/noah-isme/manpower-adp-api/internal/middleware"
	"github.com/noah-isme/manpower-adp-api/internal/repository"
	"github.com/noah-isme/manpower-adp-api/internal/service"
	"github.com/noah-isme/manpower-adp-api/pkg/cache"
	"github.com/noah-isme/manpower-adp-api/pkg/config"
	"github.com/noah-isme/manpower-adp-api/pkg/database"
	"github.com/noah-isme/manpower-adp-api/pkg/jobs"
	"github.com/noah-isme/manpower-adp-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/manpower-adp-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/manpower-adp-api/pkg/middleware/requestid"
	"github.com/noah-isme/manpower-adp-api/pkg/storage"
)

// @title Manpower ADP API
// @version 1.0.0
// @description Workforce attendance and payroll computation API
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	shiftTypeRepo := repository.NewShiftTypeRepository(db)
	timingRepo := repository.NewCycleTimingRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Payroll.CacheTTL, logr, cfg.Payroll.CacheEnabled && redisClient != nil)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	employeeSvc := service.NewEmployeeService(employeeRepo, timingRepo, nil, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, shiftTypeRepo, nil, logr)
	cycleSvc := service.NewCycleService(timingRepo, nil, logr)
	scanSvc := service.NewScanService(employeeRepo, walletRepo, metricsSvc, nil, logr, cfg.Payroll.AutoCloseGap)
	workLogSvc := service.NewWorkLogService(employeeRepo, walletRepo, logr)
	summarySvc := service.NewSummaryService(employeeRepo, timingRepo, walletRepo, summaryRepo, cacheSvc, metricsSvc, nil, logr)

	// Export pipeline.
	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to prepare export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(summaryRepo, fileStore, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
	}

	// Async batch queue.
	batchQueue := jobs.NewQueue("summary-batch", func(ctx context.Context, job jobs.Job) error {
		req, err := decodeBatchPayload(job.Payload)
		if err != nil {
			return err
		}
		result, err := summarySvc.ComputeMonthlyForAll(ctx, req)
		if err != nil {
			return err
		}
		logr.Sugar().Infow("queued batch finished",
			"job_id", job.ID,
			"computed", result.Computed,
			"skipped", result.Skipped,
			"failed", result.Failed,
			"not_salary_month", result.NotSalaryMonth,
		)
		return nil
	}, jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		BufferSize: cfg.Jobs.BufferSize,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	batchQueue.Start(ctx)
	defer batchQueue.Stop()

	if exportSvc != nil && cfg.Exports.CleanupInterval > 0 {
		go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval, logr)
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	scanHandler := handler.NewScanHandler(scanSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc, workLogSvc)
	departmentHandler := handler.NewDepartmentHandler(departmentSvc)
	cycleHandler := handler.NewCycleTimingHandler(cycleSvc)
	summaryHandler := handler.NewSummaryHandler(summarySvc, batchQueue)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	var exportHandler *handler.ExportHandler
	if exportSvc != nil {
		exportHandler = handler.NewExportHandler(exportSvc)
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/scans", scanHandler.Record)

		protected.GET("/employees", employeeHandler.List)
		protected.POST("/employees", employeeHandler.Create)
		protected.GET("/employees/:id", employeeHandler.Get)
		protected.GET("/employees/:id/work-logs", employeeHandler.WorkLogs)

		protected.GET("/departments", departmentHandler.ListDepartments)
		protected.POST("/departments", departmentHandler.CreateDepartment)
		protected.GET("/shift-types", departmentHandler.ListShiftTypes)
		protected.POST("/shift-types", departmentHandler.CreateShiftType)

		protected.GET("/cycle-timings", cycleHandler.List)
		protected.POST("/cycle-timings", cycleHandler.Create)
		protected.GET("/cycle-timings/:id", cycleHandler.Get)

		protected.POST("/payroll/summaries/compute", summaryHandler.Compute)
		protected.POST("/payroll/summaries/batch", summaryHandler.Batch)
		protected.GET("/payroll/summaries", summaryHandler.List)
		protected.PATCH("/payroll/summaries/:id/manual", summaryHandler.UpdateManual)

		if exportHandler != nil {
			protected.POST("/payroll/summaries/export", exportHandler.Generate)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// decodeBatchPayload tolerates both the typed payload from the handler and a
// generic map after JSON round-tripping.
func decodeBatchPayload(payload interface{}) (service.BatchComputeRequest, error) {
	if req, ok := payload.(service.BatchComputeRequest); ok {
		return req, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return service.BatchComputeRequest{}, fmt.Errorf("encode batch payload: %w", err)
	}
	var req service.BatchComputeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return service.BatchComputeRequest{}, fmt.Errorf("decode batch payload: %w", err)
	}
	return req, nil
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval time.Duration, logr *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := exports.Cleanup(0)
			if err != nil {
				logr.Sugar().Warnw("export cleanup failed", "error", err)
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("export cleanup removed files", "count", len(deleted))
			}
		}
	}
}
