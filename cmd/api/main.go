package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"sgo/api/swagger"
	"sgo/internal/config"
	"sgo/internal/database"
	"sgo/internal/handler"
	"sgo/internal/logger"
	"sgo/internal/metrics"
	"sgo/internal/middleware"
	"sgo/internal/repository"
	"sgo/internal/service"
	"sgo/internal/storage"
	"sgo/internal/websocket"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title           SGO API
// @version         1.0
// @description     Construction site management: projects, contracts, team, expenses and reports.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		ServiceName: "sgo-api",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		log.Fatalf("Logger setup failed: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	gin.SetMode(cfg.GinMode)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(cfg.DSN(), zlog)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	zlog.Info("connected to PostgreSQL", zap.String("host", cfg.DBHost), zap.String("database", cfg.DBName))

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.Default()
		if err := metrics.InstrumentDB(db, cfg.DBName); err != nil {
			zlog.Warn("database metrics disabled", zap.Error(err))
		}
	}

	// Repositories
	txManager := repository.NewTransactionManager(db)
	companyRepo := repository.NewCompanyRepository(db)
	userRepo := repository.NewUserRepository(db)
	costCenterRepo := repository.NewCostCenterRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	contractRepo := repository.NewContractRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	allocationRepo := repository.NewAllocationRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	wsHub := websocket.NewHub(zlog, cfg.AllowedOrigins)
	go wsHub.Run(ctx)

	// Services
	userService := service.NewUserService(userRepo, companyRepo, cfg.Secret())
	companyService := service.NewCompanyService(companyRepo, auditRepo, txManager)
	costCenterService := service.NewCostCenterService(costCenterRepo, auditRepo, txManager)
	projectService := service.NewProjectService(projectRepo, auditRepo, txManager)
	contractService := service.NewContractService(contractRepo, projectRepo, auditRepo, txManager)
	invoiceService := service.NewInvoiceService(invoiceRepo, contractRepo, auditRepo, txManager)
	employeeService := service.NewEmployeeService(employeeRepo, auditRepo, txManager)
	teamService := service.NewTeamService(allocationRepo, projectRepo, employeeRepo, auditRepo, txManager)
	expenseService := service.NewExpenseService(expenseRepo, costCenterRepo, projectRepo, contractRepo, auditRepo, txManager, m, wsHub)
	reportService := service.NewReportService(expenseRepo, m)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(statisticsRepo)
	attachmentService := service.NewAttachmentService(storage.New(cfg, zlog))

	catalog, err := config.LoadCostCenterCatalog(cfg.CostCenterSeedFile, database.DefaultCostCenters)
	if err != nil {
		zlog.Fatal("cost center catalog unreadable", zap.String("file", cfg.CostCenterSeedFile), zap.Error(err))
	}
	if added, err := costCenterService.SeedCatalog(ctx, catalog); err != nil {
		zlog.Error("cost center seed failed", zap.Error(err))
	} else if added > 0 {
		zlog.Info("cost center catalog seeded", zap.Int("added", added))
	}

	if created, err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminCompany); err != nil {
		zlog.Error("admin bootstrap failed", zap.Error(err))
	} else if created {
		zlog.Info("initial admin created", zap.String("email", cfg.AdminEmail))
	}

	auth := middleware.NewAuth(cfg.Secret(), cfg.IsRelease())
	loginLimiter := middleware.NewRateLimiter(10, 5)

	router := handler.NewRouter(handler.RouterOptions{
		Auth:           auth,
		LoginLimiter:   loginLimiter.Middleware(),
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
		Users:          handler.NewUserHandler(userService, auth),
		Handlers: []handler.RouteRegistrar{
			handler.NewCompanyHandler(companyService),
			handler.NewCostCenterHandler(costCenterService),
			handler.NewExpenseHandler(expenseService),
			handler.NewReportHandler(reportService),
			handler.NewProjectHandler(projectService, teamService),
			handler.NewContractHandler(contractService),
			handler.NewInvoiceHandler(invoiceService),
			handler.NewEmployeeHandler(employeeService),
			handler.NewAuditHandler(auditService),
			handler.NewStatisticsHandler(statisticsService),
			handler.NewAttachmentHandler(attachmentService),
		},
	})

	swagger.SwaggerInfo.Host = "localhost:" + cfg.Port
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/ws", wsHub.Handler(auth))
	if m != nil {
		router.GET("/metrics", metrics.Handler())
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
