package http

import (
	"github.com/gin-gonic/gin"

	"github.com/eletrohub/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("/search", handler.SearchProducts)
		}

		budgets := v1.Group("/budgets")
		{
			budgets.POST("/import", handler.ImportBudget)
		}

		v1.POST("/corrections", handler.RecordCorrection)

		admin := v1.Group("/admin")
		{
			admin.GET("/failed-searches", handler.ListFailedSearches)
		}

		sync := v1.Group("/sync")
		{
			sync.POST("/products", handler.SyncProducts)
		}
	}

	return router
}
