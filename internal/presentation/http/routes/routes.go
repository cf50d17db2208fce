package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tleroux/chiffrage-api/internal/config"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/handler"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/middleware"
	"github.com/tleroux/chiffrage-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Supplier  *handler.SupplierHandler
	Site      *handler.SiteHandler
	Project   *handler.ProjectHandler
	Product   *handler.ProductHandler
	LaborRole *handler.LaborRoleHandler
	Order     *handler.OrderHandler
	Devis     *handler.DevisHandler
	Estimate  *handler.EstimateHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager *utils.JWTManager
	Cfg        *config.Config
	Logger     *zap.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-user rate limiter
		rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/register", h.Auth.Register)
		auth.POST("/refresh", h.Auth.RefreshToken)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers) {
	// Profile routes
	protected.GET("/profile", h.Auth.GetProfile)
	protected.PUT("/profile/password", h.Auth.ChangePassword)

	// Suppliers
	registerSupplierRoutes(protected, h)

	// Delivery sites
	registerSiteRoutes(protected, h)

	// Projects
	registerProjectRoutes(protected, h)

	// Catalog products
	registerProductRoutes(protected, h)

	// Labor roles and estimate categories
	registerLaborRoutes(protected, h)

	// Purchase orders and their devis attachments
	registerOrderRoutes(protected, h)

	// Estimate versions
	registerEstimateRoutes(protected, h)
}

func registerSupplierRoutes(protected *gin.RouterGroup, h *Handlers) {
	suppliers := protected.Group("/suppliers")
	{
		suppliers.GET("", h.Supplier.List)
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.DELETE("/:id", h.Supplier.Delete)
	}
}

func registerSiteRoutes(protected *gin.RouterGroup, h *Handlers) {
	sites := protected.Group("/sites")
	{
		sites.GET("", h.Site.List)
		sites.POST("", h.Site.Create)
		sites.GET("/:id", h.Site.Get)
		sites.PUT("/:id", h.Site.Update)
		sites.DELETE("/:id", h.Site.Delete)
	}
}

func registerProjectRoutes(protected *gin.RouterGroup, h *Handlers) {
	projects := protected.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.POST("", h.Project.Create)
		projects.GET("/:id", h.Project.Get)
		projects.PUT("/:id", h.Project.Update)
		projects.DELETE("/:id", h.Project.Delete)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}

func registerLaborRoutes(protected *gin.RouterGroup, h *Handlers) {
	roles := protected.Group("/labor-roles")
	{
		roles.GET("", h.LaborRole.List)
		roles.POST("", h.LaborRole.Create)
		roles.GET("/:id", h.LaborRole.Get)
		roles.PUT("/:id", h.LaborRole.Update)
	}

	categories := protected.Group("/categories")
	{
		categories.GET("", h.LaborRole.ListCategories)
		categories.POST("", h.LaborRole.CreateCategory)
	}
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers) {
	orders := protected.Group("/orders")
	{
		orders.GET("", h.Order.List)
		orders.POST("", h.Order.Create)
		orders.GET("/export", h.Order.ExportCSV)
		orders.GET("/:id", h.Order.Get)
		orders.PUT("/:id", h.Order.Update)
		orders.PATCH("/:id/status", h.Order.UpdateStatus)
		orders.DELETE("/:id", h.Order.Delete)
		orders.GET("/:id/print", h.Order.Print)

		// Devis attachments live under their order
		orders.POST("/:id/devis", h.Devis.Upload)
		orders.GET("/:id/devis", h.Devis.List)
		orders.POST("/:id/devis/reorder", h.Devis.Reorder)
		orders.GET("/:id/devis/archive", h.Devis.Archive)
		orders.GET("/:id/devis/:devisId", h.Devis.Download)
		orders.PUT("/:id/devis/:devisId", h.Devis.Rename)
		orders.DELETE("/:id/devis/:devisId", h.Devis.Delete)
	}
}

func registerEstimateRoutes(protected *gin.RouterGroup, h *Handlers) {
	estimates := protected.Group("/estimates")
	{
		estimates.GET("", h.Estimate.ListVersions)
		estimates.POST("", h.Estimate.CreateVersion)
		estimates.GET("/:id", h.Estimate.GetVersion)
		estimates.PATCH("/:id", h.Estimate.UpdateVersion)
		estimates.PATCH("/:id/status", h.Estimate.UpdateStatus)
		estimates.DELETE("/:id", h.Estimate.DeleteVersion)
		estimates.GET("/:id/export", h.Estimate.Export)
		estimates.GET("/:id/print", h.Estimate.Print)

		// Item tree
		estimates.POST("/:id/sections", h.Estimate.AddSection)
		estimates.POST("/:id/lines", h.Estimate.AddLine)
		estimates.POST("/:id/items/reorder", h.Estimate.ReorderItems)
		estimates.PATCH("/:id/items/:itemId", h.Estimate.UpdateItem)
		estimates.DELETE("/:id/items/:itemId", h.Estimate.DeleteItem)
	}
}
