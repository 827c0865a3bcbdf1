package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tastebox/backend/internal/database"
	"github.com/tastebox/backend/internal/middleware"
	"github.com/tastebox/backend/internal/service"
)

// Dependencies are the services behind the HTTP API. Drafts and ImportLimiter may be nil.
type Dependencies struct {
	DB            *gorm.DB
	Auth          service.IAuthService
	Recipes       service.IRecipeService
	Drafts        service.IDraftService
	Extractor     service.IExtractor
	Documents     service.IDocumentService
	Images        service.IImageService
	Exporter      service.IRecipeExporter
	ImportLimiter *middleware.RateLimiter
}

// HealthCheck returns the health status of the API
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := database.HealthCheck(ctx, db); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "TasteBox API is running",
			"version": "v1.0.0",
		})
	}
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	router.Use(middleware.ErrorHandler(ClassifyError))

	// Health check endpoint (no auth required)
	router.GET("/health", HealthCheck(deps.DB))

	v1 := router.Group("/api/v1")
	v1.GET("/health", HealthCheck(deps.DB))

	requireAuth := middleware.AuthMiddleware(deps.Auth)

	NewAuthHandler(deps.Auth).RegisterRoutes(v1)
	NewRecipeHandler(deps.Recipes, deps.Exporter).RegisterRoutes(v1.Group("", requireAuth))
	NewImportHandler(deps.Extractor, deps.Documents, deps.Recipes, deps.Drafts).
		RegisterRoutes(v1.Group("", requireAuth), deps.ImportLimiter)
	NewImageHandler(deps.Images).RegisterRoutes(v1, requireAuth)
}
