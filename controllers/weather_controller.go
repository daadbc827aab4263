package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agrisense-http-service/config"
	"agrisense-http-service/internal/error/response"
	"agrisense-http-service/models"
	"agrisense-http-service/services"
	"agrisense-http-service/services/container"
)

// WeatherController handles weather and alert requests
type WeatherController struct {
	BaseControllerImpl
}

// NewWeatherController creates a new weather controller
func (f *ControllerFactory) NewWeatherController(ctx *gin.Context) *WeatherController {
	return &WeatherController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// coordinates resolves lat/lon/city from the query, falling back to the
// configured default location.
func (c *WeatherController) coordinates() (lat, lon, city string) {
	cfg := c.Container.GetConfig()
	lat = c.Context.DefaultQuery("lat", cfg.DefaultLat)
	lon = c.Context.DefaultQuery("lon", cfg.DefaultLon)
	city = c.Context.DefaultQuery("city", cfg.DefaultCity)
	return lat, lon, city
}

// GetCurrent returns the merged multi-provider current weather
func (c *WeatherController) GetCurrent() {
	lat, lon, city := c.coordinates()
	cacheKey := lat + "," + lon

	redisService := c.Container.GetRedisService()

	var cached services.CurrentWeather
	if err := redisService.GetWeather(cacheKey, &cached); err == nil && !cached.IsFallback {
		c.Context.JSON(http.StatusOK, cached)
		return
	}

	current := c.Container.GetWeatherService().GetCurrent(c.Context.Request.Context(), lat, lon, city)
	if !current.IsFallback {
		redisService.CacheWeather(cacheKey, current, 10*time.Minute)
	}

	c.Context.JSON(http.StatusOK, current)
}

// GetForecast returns the merged 7-day forecast
func (c *WeatherController) GetForecast() {
	lat, lon, _ := c.coordinates()
	cacheKey := "forecast:" + lat + "," + lon

	redisService := c.Container.GetRedisService()

	var cached []services.ForecastDay
	if err := redisService.GetWeather(cacheKey, &cached); err == nil && len(cached) > 0 {
		c.Context.JSON(http.StatusOK, gin.H{"forecast": cached})
		return
	}

	forecast := c.Container.GetWeatherService().GetForecast(c.Context.Request.Context(), lat, lon)
	if len(forecast) > 0 && !forecast[0].IsFallback {
		redisService.CacheWeather(cacheKey, forecast, time.Hour)
	}

	c.Context.JSON(http.StatusOK, gin.H{"forecast": forecast})
}

// GetAlerts returns stored alerts, synthesizing from live weather when
// the table is empty.
func (c *WeatherController) GetAlerts() {
	lat, lon, city := c.coordinates()

	alerts, err := c.Container.GetAlertService().GetAlerts(c.Context.Request.Context(), lat, lon, city)
	if err != nil {
		config.Error("alert lookup failed: %v", err)
		alerts = []models.Alert{}
	}

	c.Context.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// CreateAlertRequest is the alert creation body
type CreateAlertRequest struct {
	Type        string    `json:"type" binding:"required"`
	Severity    string    `json:"severity" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Region      string    `json:"region"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}

// CreateAlert persists a new weather alert
func (c *WeatherController) CreateAlert() {
	var req CreateAlertRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "type, severity and title are required")
		return
	}

	if req.StartTime.IsZero() {
		req.StartTime = time.Now()
	}
	if req.EndTime.IsZero() {
		req.EndTime = req.StartTime.Add(24 * time.Hour)
	}

	alert := models.Alert{
		AlertType:   req.Type,
		Severity:    models.AlertSeverity(req.Severity),
		Title:       req.Title,
		Description: req.Description,
		Region:      req.Region,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}

	if err := c.Container.GetAlertService().CreateAlert(&alert); err != nil {
		config.Error("alert creation failed: %v", err)
		response.ServerError(c.Context)
		return
	}

	c.Context.JSON(http.StatusCreated, gin.H{"alert": alert})
}

// HandleWeatherFunc returns a Gin handler dispatching to the weather controller
func HandleWeatherFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)

	return func(ctx *gin.Context) {
		controller := factory.NewWeatherController(ctx)

		switch method {
		case "getCurrent":
			controller.GetCurrent()
		case "getForecast":
			controller.GetForecast()
		case "getAlerts":
			controller.GetAlerts()
		case "createAlert":
			controller.CreateAlert()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
