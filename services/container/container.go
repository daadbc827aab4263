package container

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"agrisense-http-service/config"
	"agrisense-http-service/services"
)

// ServiceContainer manages dependency injection for all services
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// base services
	jwtService   services.InterfaceJWTService
	redisService services.RedisServiceInterface
	userService  services.UserServiceInterface

	// weather and intelligence pipeline
	weatherService    services.WeatherServiceInterface
	ontologyService   services.OntologyServiceInterface
	fusionService     services.FusionServiceInterface
	zoneHealthService services.ZoneHealthServiceInterface

	// AI advisory pipeline
	aiService         services.AIServiceInterface
	visionService     services.VisionServiceInterface
	agronomistService services.AgronomistServiceInterface
	governanceService services.GovernanceServiceInterface

	// domain services
	cropService   services.CropServiceInterface
	alertService  services.AlertServiceInterface
	sensorService services.SensorServiceInterface

	mu sync.RWMutex
}

// NewServiceContainer creates and wires the full service graph
func NewServiceContainer(db *gorm.DB, cfg *config.Config, redisClient *redis.Client) *ServiceContainer {
	if db == nil {
		panic("database connection is nil")
	}
	if cfg == nil {
		panic("config is nil")
	}

	if redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis ping failed: %v, continuing without response cache", err)
		}
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	container.initializeServices()
	return container
}

func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.jwtService = services.NewJWTService(c.config)
	c.redisService = services.NewRedisService(c.config)
	c.userService = services.NewUserService(c.db, c.config)

	c.weatherService = services.NewWeatherService(c.config)
	c.ontologyService = services.NewOntologyService()
	c.fusionService = services.NewFusionService(c.config, c.weatherService)
	c.zoneHealthService = services.NewZoneHealthService(c.fusionService, c.ontologyService)

	c.aiService = services.NewAIService(c.config)
	c.visionService = services.NewVisionService(c.aiService)
	c.agronomistService = services.NewAgronomistService(c.aiService, services.NewDiagnosisStore(c.db))
	c.governanceService = services.NewGovernanceService()

	c.cropService = services.NewCropService(c.db, c.ontologyService)
	c.alertService = services.NewAlertService(c.db, c.weatherService)
	c.sensorService = services.NewSensorService(c.db, c.config)
}

// GetDB returns the database connection
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig returns the application config
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// GetJWTService returns the JWT service
func (c *ServiceContainer) GetJWTService() services.InterfaceJWTService {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.jwtService
}

// GetRedisService returns the Redis cache service
func (c *ServiceContainer) GetRedisService() services.RedisServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.redisService
}

// GetUserService returns the user service
func (c *ServiceContainer) GetUserService() services.UserServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userService
}

// GetWeatherService returns the weather aggregator
func (c *ServiceContainer) GetWeatherService() services.WeatherServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.weatherService
}

// GetOntologyService returns the crop knowledge base
func (c *ServiceContainer) GetOntologyService() services.OntologyServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ontologyService
}

// GetFusionService returns the data fusion service
func (c *ServiceContainer) GetFusionService() services.FusionServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fusionService
}

// GetZoneHealthService returns the zone health engine
func (c *ServiceContainer) GetZoneHealthService() services.ZoneHealthServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zoneHealthService
}

// GetAIService returns the LLM gateway
func (c *ServiceContainer) GetAIService() services.AIServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aiService
}

// GetVisionService returns the crop vision analyzer
func (c *ServiceContainer) GetVisionService() services.VisionServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.visionService
}

// GetAgronomistService returns the expert advisory pipeline
func (c *ServiceContainer) GetAgronomistService() services.AgronomistServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.agronomistService
}

// GetGovernanceService returns the recommendation governance layer
func (c *ServiceContainer) GetGovernanceService() services.GovernanceServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.governanceService
}

// GetCropService returns the crop service
func (c *ServiceContainer) GetCropService() services.CropServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cropService
}

// GetAlertService returns the weather alert service
func (c *ServiceContainer) GetAlertService() services.AlertServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.alertService
}

// GetSensorService returns the MQTT telemetry service
func (c *ServiceContainer) GetSensorService() services.SensorServiceInterface {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sensorService
}
