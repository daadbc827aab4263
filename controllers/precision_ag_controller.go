package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"agrisense-http-service/config"
	"agrisense-http-service/internal/error/response"
	"agrisense-http-service/models"
	"agrisense-http-service/services"
	"agrisense-http-service/services/container"
)

// visionConfidenceGate is the minimum photo confidence accepted by the
// expert advice pipeline.
const visionConfidenceGate = 0.65

// PrecisionAgController handles zone health, advisory and telemetry requests
type PrecisionAgController struct {
	BaseControllerImpl
}

// NewPrecisionAgController creates a new precision agriculture controller
func (f *ControllerFactory) NewPrecisionAgController(ctx *gin.Context) *PrecisionAgController {
	return &PrecisionAgController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// ZoneHealthRequest is the zone health calculation body
type ZoneHealthRequest struct {
	ZoneID          string                  `json:"zoneId"`
	Lat             string                  `json:"lat"`
	Lon             string                  `json:"lon"`
	CropType        string                  `json:"cropType"`
	DaysAfterSowing int                     `json:"daysAfterSowing"`
	SensorData      map[string]float64      `json:"sensorData"`
	ImageAnalysis   *services.ImageAnalysis `json:"imageAnalysis"`
}

// GetZoneHealth computes health for a zone given by query parameters
func (c *PrecisionAgController) GetZoneHealth() {
	req := ZoneHealthRequest{
		ZoneID:   c.Context.Query("zoneId"),
		Lat:      c.Context.Query("lat"),
		Lon:      c.Context.Query("lon"),
		CropType: c.Context.Query("cropType"),
	}
	if days := c.Context.Query("daysAfterSowing"); days != "" {
		req.DaysAfterSowing, _ = strconv.Atoi(days)
	}
	c.computeZoneHealth(req)
}

// PostZoneHealth computes health for a zone given by request body
func (c *PrecisionAgController) PostZoneHealth() {
	var req ZoneHealthRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "invalid request body")
		return
	}
	c.computeZoneHealth(req)
}

func (c *PrecisionAgController) computeZoneHealth(req ZoneHealthRequest) {
	if req.ZoneID == "" || req.Lat == "" || req.Lon == "" || req.CropType == "" {
		response.ParamError(c.Context, "zoneId, lat, lon and cropType are required")
		return
	}

	redisService := c.Container.GetRedisService()
	cacheKey := req.Lat + "_" + req.Lon + "_" + req.ZoneID

	// Only sensorless requests are cacheable; live readings and photos
	// change the result.
	cacheable := len(req.SensorData) == 0 && req.ImageAnalysis == nil
	if cacheable {
		var cached services.ZoneHealth
		if err := redisService.GetZoneHealth(cacheKey, &cached); err == nil && cached.ZoneID != "" {
			c.Context.JSON(http.StatusOK, gin.H{"success": true, "data": cached, "cached": true})
			return
		}
	}

	sensorData := req.SensorData
	if latest := c.Container.GetSensorService().LatestForZone(req.ZoneID); latest != nil {
		merged := make(map[string]float64, len(latest)+len(sensorData))
		for k, v := range latest {
			merged[k] = v
		}
		for k, v := range sensorData {
			merged[k] = v
		}
		sensorData = merged
	}

	health := c.Container.GetZoneHealthService().CalculateZoneHealth(c.Context.Request.Context(), services.ZoneHealthParams{
		ZoneID:          req.ZoneID,
		Lat:             req.Lat,
		Lon:             req.Lon,
		CropType:        req.CropType,
		DaysAfterSowing: req.DaysAfterSowing,
		SensorData:      sensorData,
		ImageAnalysis:   req.ImageAnalysis,
	})

	if cacheable && !health.IsFallback {
		redisService.CacheZoneHealth(cacheKey, health, 10*time.Minute)
	}

	c.Context.JSON(http.StatusOK, zoneHealthEnvelope(health))
}

// zoneHealthEnvelope wraps a zone health report. Fallback reports carry
// success:false so clients do not act on the neutral score.
func zoneHealthEnvelope(health *services.ZoneHealth) gin.H {
	return gin.H{"success": !health.IsFallback, "data": health}
}

// ExpertAdviceRequest is the advisory request body
type ExpertAdviceRequest struct {
	CropType    string                 `json:"cropType" binding:"required"`
	Variety     string                 `json:"variety"`
	GrowthStage string                 `json:"growthStage"`
	ZoneID      string                 `json:"zoneId"`
	CropID      uint                   `json:"cropId"`
	Lat         string                 `json:"lat"`
	Lon         string                 `json:"lon"`
	Description string                 `json:"description"`
	PhotoBase64 string                 `json:"photoBase64"`
	Image       string                 `json:"image"`
	SoilData    map[string]interface{} `json:"soilData"`
	Constraints map[string]interface{} `json:"constraints"`
}

// photo returns the submitted plant photo. photoBase64 is the canonical
// field name; image is kept as an accepted alias.
func (r *ExpertAdviceRequest) photo() string {
	if r.PhotoBase64 != "" {
		return r.PhotoBase64
	}
	return r.Image
}

// GetExpertAdvice runs the full advisory pipeline: photo triage, zone
// health calibration, history lookup, AI diagnosis and governance.
func (c *PrecisionAgController) GetExpertAdvice() {
	var req ExpertAdviceRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "cropType is required")
		return
	}

	cfg := c.Container.GetConfig()
	if req.Lat == "" {
		req.Lat = cfg.DefaultLat
	}
	if req.Lon == "" {
		req.Lon = cfg.DefaultLon
	}

	ctx := c.Context.Request.Context()

	// Photo triage first: a low-confidence image is rejected before any
	// provider quota is spent on diagnosis.
	var visualSignals *services.VisionSignals
	if photo := req.photo(); photo != "" {
		signals, err := c.Container.GetVisionService().AnalyzePlantPhoto(ctx, photo)
		if err != nil {
			config.Warning("vision analysis failed, continuing without photo: %v", err)
		} else if signals != nil {
			if signals.Confidence < visionConfidenceGate {
				c.Context.JSON(http.StatusUnprocessableEntity, gin.H{
					"error":         "LOW_CONFIDENCE",
					"message":       "image quality too low for reliable diagnosis, please retake the photo",
					"image_quality": signals.ImageQuality,
					"confidence":    signals.Confidence,
				})
				return
			}
			visualSignals = signals
		}
	}

	var imageAnalysis *services.ImageAnalysis
	if visualSignals != nil {
		score := visualSignals.HealthScore
		imageAnalysis = &services.ImageAnalysis{
			HealthScore: &score,
			Issues:      visualSignals.DetectedIssues,
		}
	}

	health := c.Container.GetZoneHealthService().CalculateZoneHealth(ctx, services.ZoneHealthParams{
		ZoneID:        firstNonEmpty(req.ZoneID, "advisory"),
		Lat:           req.Lat,
		Lon:           req.Lon,
		CropType:      req.CropType,
		SensorData:    c.Container.GetSensorService().LatestForZone(req.ZoneID),
		ImageAnalysis: imageAnalysis,
	})

	// History lookup is best effort; a database outage never blocks advice.
	var history []models.AgronomyRecord
	if req.CropID != 0 {
		records, err := c.Container.GetCropService().GetRecords(req.CropID, 10)
		if err != nil {
			config.Warning("agronomy history unavailable for crop %d: %v", req.CropID, err)
		} else {
			history = records
		}
	}

	lat, _ := strconv.ParseFloat(req.Lat, 64)
	lon, _ := strconv.ParseFloat(req.Lon, 64)

	weather := c.Container.GetWeatherService().GetCurrent(ctx, req.Lat, req.Lon, cfg.DefaultCity)

	advice, err := c.Container.GetAgronomistService().GetExpertAdvice(ctx, services.ExpertAdviceParams{
		CropType:        req.CropType,
		Variety:         req.Variety,
		GrowthStage:     req.GrowthStage,
		Location:        services.Location{Lat: lat, Lon: lon},
		SoilData:        req.SoilData,
		Weather:         weather,
		HealthScore:     health.OverallScore,
		History:         history,
		PhotoAnalysis:   visualSignals,
		UserDescription: req.Description,
		Constraints:     req.Constraints,
	})
	if err != nil {
		config.Error("expert advice pipeline failed: %v", err)
		c.Context.JSON(http.StatusInternalServerError, gin.H{
			"error":   "advice generation failed",
			"details": "the advisory service is temporarily unavailable",
		})
		return
	}

	governed := c.Container.GetGovernanceService().GovernAdvice(advice, history)

	c.Context.JSON(http.StatusOK, gin.H{
		"success":       true,
		"data":          governed,
		"zoneHealth":    health,
		"visualSignals": visualSignals,
	})
}

// AnalyzeVisionRequest is the standalone photo diagnosis body
type AnalyzeVisionRequest struct {
	Image string `json:"image" binding:"required"`
}

// AnalyzeVision runs the photo diagnosis without the advisory pipeline
func (c *PrecisionAgController) AnalyzeVision() {
	var req AnalyzeVisionRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "image is required")
		return
	}

	signals, err := c.Container.GetVisionService().AnalyzePlantPhoto(c.Context.Request.Context(), req.Image)
	if err != nil {
		config.Error("vision analysis failed: %v", err)
		c.Context.JSON(http.StatusInternalServerError, gin.H{
			"error":   "vision analysis failed",
			"details": "unable to analyze the submitted image",
		})
		return
	}

	c.Context.JSON(http.StatusOK, gin.H{"success": true, "data": signals})
}

// GetRecords returns the recent agronomy history for a crop
func (c *PrecisionAgController) GetRecords() {
	cropID, err := strconv.ParseUint(c.Context.Query("cropId"), 10, 32)
	if err != nil {
		response.ParamError(c.Context, "cropId is required")
		return
	}

	limit := 20
	if l := c.Context.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := c.Container.GetCropService().GetRecords(uint(cropID), limit)
	if err != nil {
		config.Error("record lookup failed for crop %d: %v", cropID, err)
		response.ServerError(c.Context)
		return
	}

	c.Context.JSON(http.StatusOK, gin.H{"records": records})
}

// CreateRecordRequest is the agronomy record creation body
type CreateRecordRequest struct {
	CropID    uint   `json:"cropId" binding:"required"`
	Action    string `json:"action" binding:"required"`
	Category  string `json:"category"`
	InputUsed string `json:"inputUsed"`
	Quantity  string `json:"quantity"`
	Notes     string `json:"notes"`
}

// CreateRecord logs a field action for the authenticated user
func (c *PrecisionAgController) CreateRecord() {
	var req CreateRecordRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "cropId and action are required")
		return
	}

	record := models.AgronomyRecord{
		UserID:    c.Context.GetUint("userID"),
		CropID:    req.CropID,
		Action:    req.Action,
		Category:  req.Category,
		InputUsed: req.InputUsed,
		Quantity:  req.Quantity,
		Notes:     req.Notes,
	}

	if err := c.Container.GetCropService().CreateRecord(&record); err != nil {
		config.Error("record creation failed: %v", err)
		response.ServerError(c.Context)
		return
	}

	c.Context.JSON(http.StatusCreated, gin.H{"record": record})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// HandlePrecisionAgFunc returns a Gin handler dispatching to the
// precision agriculture controller.
func HandlePrecisionAgFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)

	return func(ctx *gin.Context) {
		controller := factory.NewPrecisionAgController(ctx)

		switch method {
		case "getZoneHealth":
			controller.GetZoneHealth()
		case "postZoneHealth":
			controller.PostZoneHealth()
		case "getExpertAdvice":
			controller.GetExpertAdvice()
		case "analyzeVision":
			controller.AnalyzeVision()
		case "getRecords":
			controller.GetRecords()
		case "createRecord":
			controller.CreateRecord()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
