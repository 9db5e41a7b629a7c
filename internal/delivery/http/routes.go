package http

import (
	"github.com/gin-gonic/gin"
	"github.com/productlens/backend/config"
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
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}
	{
		products := v1.Group("/products")
		{
			products.POST("/detect", handler.DetectProduct)
		}

		badges := v1.Group("/badges")
		{
			badges.POST("/:id/opinions", handler.LoadBadgeOpinions)
			badges.DELETE("/:id", handler.DismissBadge)
		}

		v1.POST("/navigation", handler.ObserveNavigation)
		v1.POST("/opinions", handler.GetOpinions)
		v1.POST("/messages", handler.PostMessage)

		tabs := v1.Group("/tabs")
		{
			tabs.GET("/:tabId", handler.GetTab)
			tabs.DELETE("/:tabId", handler.CloseTab)
		}
	}

	return router
}
