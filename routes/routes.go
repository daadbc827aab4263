package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"agrisense-http-service/config"
	"agrisense-http-service/controllers"
	"agrisense-http-service/middleware"
	"agrisense-http-service/services/container"
)

// SetupRouter initializes the configured Gin engine. The service
// container is returned so the caller can manage long-lived connections
// such as the MQTT subscriber.
func SetupRouter(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) (*gin.Engine, *container.ServiceContainer) {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	serviceContainer := container.NewServiceContainer(db, cfg, redisClient)
	middleware.InitAuthMiddleware(cfg)

	registerRoutes(r, serviceContainer)
	return r, serviceContainer
}

// registerRoutes wires all API routes
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	api := r.Group("/api")
	api.Use(middleware.IPRateLimiter(middleware.RateLimiterConfig{Rate: 10, Burst: 30}))

	registerPublicRoutes(api, container)
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes wires routes that need no session
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// Health check
	healthController := controllers.NewHealthCheckController()
	api.GET("/ping", healthController.Ping)

	// Authentication
	api.POST("/auth/login", controllers.HandleJWTFunc(container, "login"))

	// Weather aggregation and alerts
	api.GET("/weather/current", controllers.HandleWeatherFunc(container, "getCurrent"))
	api.GET("/weather/forecast", controllers.HandleWeatherFunc(container, "getForecast"))
	api.GET("/weather/alerts", controllers.HandleWeatherFunc(container, "getAlerts"))
	api.POST("/weather/alerts", controllers.HandleWeatherFunc(container, "createAlert"))

	// Zone intelligence. The AI-backed endpoints carry a tighter
	// per-path limit to protect provider quotas.
	aiLimit := middleware.PathRateLimiter(middleware.DefaultRateLimiterConfig())
	api.GET("/precision-ag/zone-health", controllers.HandlePrecisionAgFunc(container, "getZoneHealth"))
	api.POST("/precision-ag/zone-health", controllers.HandlePrecisionAgFunc(container, "postZoneHealth"))
	api.POST("/precision-ag/analyze-vision", aiLimit, controllers.HandlePrecisionAgFunc(container, "analyzeVision"))
}

// registerAuthenticatedRoutes wires routes behind JWT authentication
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	auth := api.Group("/")
	auth.Use(middleware.Authentication())

	// Expert advisory pipeline
	aiLimit := middleware.PathRateLimiter(middleware.DefaultRateLimiterConfig())
	auth.POST("/precision-ag/expert-advice", aiLimit, controllers.HandlePrecisionAgFunc(container, "getExpertAdvice"))

	// Agronomy records
	auth.GET("/precision-ag/records", controllers.HandlePrecisionAgFunc(container, "getRecords"))
	auth.POST("/precision-ag/records", controllers.HandlePrecisionAgFunc(container, "createRecord"))

	// Crop management
	auth.Group("/crops").GET("", controllers.HandleCropFunc(container, "getCrops"))
	auth.Group("/crops").GET("/:id", controllers.HandleCropFunc(container, "getCrop"))
	auth.Group("/crops").POST("", controllers.HandleCropFunc(container, "createCrop"))
	auth.Group("/crops").PUT("/:id", controllers.HandleCropFunc(container, "updateCrop"))
	auth.Group("/crops").DELETE("/:id", controllers.HandleCropFunc(container, "deleteCrop"))
}
