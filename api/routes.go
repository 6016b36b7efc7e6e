package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/genre-api/api/genres"
	"github.com/killallgit/genre-api/api/health"
	"github.com/killallgit/genre-api/api/predict"
	"github.com/killallgit/genre-api/api/predictions"
	"github.com/killallgit/genre-api/api/types"
	"github.com/killallgit/genre-api/api/version"
	_ "github.com/killallgit/genre-api/docs/swagger"
	"github.com/killallgit/genre-api/pkg/config"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, limits config.RateLimitConfig, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil || deps.Classifier == nil {
		return fmt.Errorf("classifier dependency is required")
	}

	// Register public routes (no rate limiting)
	health.RegisterRoutes(engine, deps)
	genres.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	// Register Swagger documentation route
	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	docsGroup := engine.Group("/docs")
	docsGroup.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Setup 404 handler
	engine.NoRoute(NotFoundHandler())

	// Prediction routes run the full pipeline and are rate limited per client
	predictGroup := engine.Group("/predict")
	if limits.Enabled && limits.RequestsPerSecond > 0 {
		burst := limits.Burst
		if burst <= 0 {
			burst = 1
		}
		predictGroup.Use(PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, limits.RequestsPerSecond, burst))
	}
	predict.RegisterRoutes(predictGroup, deps)

	// API v1 routes
	v1 := engine.Group("/api/v1")
	predictions.RegisterRoutes(v1.Group("/predictions"), deps)

	return nil
}

// NotFoundHandler handles 404 errors
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{
			Error: fmt.Sprintf("The requested endpoint %s was not found", c.Request.URL.Path),
		})
	}
}
