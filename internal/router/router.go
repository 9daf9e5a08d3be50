package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/api"
	"github.com/plateful/backend/internal/database"
	"github.com/plateful/backend/internal/middleware"
	"github.com/plateful/backend/internal/service"
)

// SetupRouter configures the application routes
func SetupRouter(
	db *gorm.DB,
	auth service.IAuthService,
	entries service.IFoodEntryService,
	photos *service.PhotoService,
	redisClient *redis.Client,
) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := api.NewAuthHandler(auth)
	entryHandler := api.NewEntryHandler(entries, photos)
	grantHandler := api.NewGrantHandler(db)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		var uploadExtras []gin.HandlerFunc
		if redisClient != nil {
			uploadExtras = append(uploadExtras,
				middleware.NewUploadRateLimiter(redisClient).RateLimitMiddleware())
		}
		entryHandler.RegisterRoutes(protected, uploadExtras...)

		// Sharing entries with a clinician requires a confirmed address.
		grants := protected.Group("", middleware.RequireEmailConfirmation(db))
		grantHandler.RegisterRoutes(grants)
	}

	return router
}
