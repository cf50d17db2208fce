package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tleroux/chiffrage-api/internal/application/service"
	"github.com/tleroux/chiffrage-api/internal/config"
	"github.com/tleroux/chiffrage-api/internal/infrastructure/database"
	"github.com/tleroux/chiffrage-api/internal/infrastructure/repository"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/handler"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/routes"
	"github.com/tleroux/chiffrage-api/pkg/reference"
	"github.com/tleroux/chiffrage-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize logger
	var logger *zap.Logger
	var err error
	if cfg.App.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Seed default data
	if err := database.SeedDefaultData(db, cfg, logger); err != nil {
		logger.Warn("Failed to seed default data", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	productRepo := repository.NewProductRepository(db)
	laborRoleRepo := repository.NewLaborRoleRepository(db)
	categoryRepo := repository.NewEstimateCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	devisRepo := repository.NewDevisRepository(db)
	versionRepo := repository.NewEstimateVersionRepository(db)
	itemRepo := repository.NewEstimateItemRepository(db)

	// Debounced totals writer for the estimate editor
	flusher := service.NewTotalsFlusher(versionRepo, cfg.Estimate.AutosaveDebounce, logger)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	supplierService := service.NewSupplierService(supplierRepo)
	siteService := service.NewSiteService(siteRepo)
	projectService := service.NewProjectService(projectRepo)
	productService := service.NewProductService(productRepo, supplierRepo)
	laborRoleService := service.NewLaborRoleService(laborRoleRepo, categoryRepo)
	orderService := service.NewOrderService(orderRepo, supplierRepo, siteRepo, projectRepo, userRepo, reference.New(), logger)
	devisService := service.NewDevisService(devisRepo, orderRepo, cfg.Storage, logger)
	estimateService := service.NewEstimateService(versionRepo, itemRepo, projectRepo, laborRoleRepo, categoryRepo, flusher, logger)
	exportService := service.NewExportService(estimateService, orderRepo)
	pdfService := service.NewPDFService(estimateService, orderService)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Supplier:  handler.NewSupplierHandler(supplierService),
		Site:      handler.NewSiteHandler(siteService),
		Project:   handler.NewProjectHandler(projectService),
		Product:   handler.NewProductHandler(productService),
		LaborRole: handler.NewLaborRoleHandler(laborRoleService),
		Order:     handler.NewOrderHandler(orderService, exportService, pdfService),
		Devis:     handler.NewDevisHandler(devisService),
		Estimate:  handler.NewEstimateHandler(estimateService, exportService, pdfService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager: jwtManager,
		Cfg:        cfg,
		Logger:     logger,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Starting server",
			zap.String("service", cfg.App.Name),
			zap.String("port", port),
			zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	// Pending estimate totals must reach the database before exit
	flusher.FlushAll(shutdownCtx)
	flusher.Stop()

	logger.Info("Server stopped")
}
