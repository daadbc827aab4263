package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"agrisense-http-service/config"
	"agrisense-http-service/utils"
)

// SatelliteData is one NDVI/EVI observation for a zone
type SatelliteData struct {
	NDVI        float64 `json:"ndvi"`
	EVI         float64 `json:"evi"`
	LastUpdate  string  `json:"lastUpdate"`
	CloudCover  float64 `json:"cloudCover"`
	DataQuality string  `json:"dataQuality"` // good/fair/poor
	Source      string  `json:"source"`
}

// SatelliteProvider fetches vegetation indices for a zone. The default
// implementation simulates readings until a real imagery feed is wired.
type SatelliteProvider interface {
	FetchZone(ctx context.Context, lat, lon, zoneID string) (*SatelliteData, error)
}

type simulatedSatellite struct{}

func (simulatedSatellite) FetchZone(ctx context.Context, lat, lon, zoneID string) (*SatelliteData, error) {
	return &SatelliteData{
		NDVI:        0.65 + rand.Float64()*0.2,
		EVI:         0.55 + rand.Float64()*0.15,
		LastUpdate:  time.Now().UTC().Format(time.RFC3339),
		CloudCover:  rand.Float64() * 30,
		DataQuality: "good",
		Source:      "simulated",
	}, nil
}

// TemperatureStress is the heat stress index for a zone
type TemperatureStress struct {
	Level          string  `json:"level"`
	Score          int     `json:"score"`
	Temperature    float64 `json:"temperature,omitempty"`
	Humidity       float64 `json:"humidity,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// MoistureStatus classifies soil moisture readings
type MoistureStatus struct {
	Status         string   `json:"status"`
	Value          *float64 `json:"value"`
	Unit           string   `json:"unit,omitempty"`
	Rainfall       float64  `json:"rainfall,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// CropHealthIndex is the satellite-derived vegetation health score
type CropHealthIndex struct {
	Index      *int    `json:"index"`
	NDVI       float64 `json:"ndvi,omitempty"`
	EVI        float64 `json:"evi,omitempty"`
	Confidence string  `json:"confidence"`
	Note       string  `json:"note,omitempty"`
	LastUpdate string  `json:"lastUpdate,omitempty"`
}

// WeatherRisk scores field-work hazards from current weather
type WeatherRisk struct {
	Level     string   `json:"level"`
	Score     int      `json:"score"`
	Risks     []string `json:"risks,omitempty"`
	Timestamp string   `json:"timestamp,omitempty"`
}

// ZoneIntelligence bundles the computed indices
type ZoneIntelligence struct {
	TemperatureStress TemperatureStress `json:"temperatureStress"`
	MoistureStatus    MoistureStatus    `json:"moistureStatus"`
	CropHealthIndex   CropHealthIndex   `json:"cropHealthIndex"`
	WeatherRisk       WeatherRisk       `json:"weatherRisk"`
}

// ConfidenceFactors reports the state of each contributing source
type ConfidenceFactors struct {
	Weather   string `json:"weather"`
	Satellite string `json:"satellite"`
	Sensors   string `json:"sensors"`
}

// Confidence is the 0-100 data quality score for a fusion result
type Confidence struct {
	Score   int               `json:"score"`
	Level   string            `json:"level"`
	Factors ConfidenceFactors `json:"factors"`
}

// FusedZoneData is the merged intelligence for one field zone
type FusedZoneData struct {
	ZoneID       string             `json:"zoneId"`
	Timestamp    string             `json:"timestamp"`
	Weather      *CurrentWeather    `json:"weather"`
	Satellite    *SatelliteData     `json:"satellite"`
	Sensors      map[string]float64 `json:"sensors"`
	Intelligence ZoneIntelligence   `json:"intelligence"`
	Confidence   Confidence         `json:"confidence"`
	MissingData  []string           `json:"missingData"`
	IsFallback   bool               `json:"isFallback,omitempty"`
}

// FusionServiceInterface merges weather, satellite and sensor data into
// per-zone intelligence. FuseZoneData always returns a payload.
type FusionServiceInterface interface {
	FuseZoneData(ctx context.Context, lat, lon, zoneID string, sensorData map[string]float64) *FusedZoneData
	ClearCache()
}

// FusionService implements FusionServiceInterface with a 10-minute
// result cache keyed by coordinates and zone
type FusionService struct {
	weather   WeatherServiceInterface
	satellite SatelliteProvider
	cache     *utils.TTLCache
	config    *config.Config
}

// NewFusionService builds the fusion layer over the weather aggregator
func NewFusionService(cfg *config.Config, weather WeatherServiceInterface) *FusionService {
	return &FusionService{
		weather:   weather,
		satellite: simulatedSatellite{},
		cache:     utils.NewTTLCache(10 * time.Minute),
		config:    cfg,
	}
}

// NewFusionServiceWithSatellite overrides the satellite source
func NewFusionServiceWithSatellite(cfg *config.Config, weather WeatherServiceInterface, satellite SatelliteProvider) *FusionService {
	s := NewFusionService(cfg, weather)
	s.satellite = satellite
	return s
}

// FuseZoneData merges all sources for a zone. Source failures degrade
// the confidence score instead of failing the call.
func (s *FusionService) FuseZoneData(ctx context.Context, lat, lon, zoneID string, sensorData map[string]float64) *FusedZoneData {
	cacheKey := fmt.Sprintf("%s_%s_%s", lat, lon, zoneID)
	if cached, ok := s.cache.Get(cacheKey); ok {
		if fused, ok := cached.(*FusedZoneData); ok {
			return fused
		}
	}

	type satResult struct {
		data *SatelliteData
		err  error
	}
	weatherCh := make(chan *CurrentWeather, 1)
	satCh := make(chan satResult, 1)

	go func() {
		weatherCh <- s.weather.GetCurrent(ctx, lat, lon, "")
	}()
	go func() {
		data, err := s.satellite.FetchZone(ctx, lat, lon, zoneID)
		satCh <- satResult{data, err}
	}()

	weather := <-weatherCh
	sat := <-satCh
	if sat.err != nil {
		config.Warning("Satellite fetch failed for zone %s: %v", zoneID, sat.err)
	}

	if sensorData == nil {
		sensorData = map[string]float64{}
	}

	fused := &FusedZoneData{
		ZoneID:    zoneID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Weather:   weather,
		Satellite: sat.data,
		Sensors:   sensorData,
		Intelligence: ZoneIntelligence{
			TemperatureStress: calculateTemperatureStress(weather, sensorData),
			MoistureStatus:    calculateMoistureStatus(sensorData, weather),
			CropHealthIndex:   calculateCropHealthIndex(sat.data),
			WeatherRisk:       calculateWeatherRisk(weather),
		},
		Confidence:  calculateConfidence(weather, sat.data, sensorData),
		MissingData: identifyMissingData(weather, sat.data, sensorData),
		IsFallback:  (weather == nil || weather.IsFallback) && sat.data == nil,
	}

	s.cache.Set(cacheKey, fused)
	return fused
}

// ClearCache drops all cached fusion results
func (s *FusionService) ClearCache() {
	s.cache.Clear()
}

func calculateTemperatureStress(weather *CurrentWeather, sensors map[string]float64) TemperatureStress {
	if weather == nil {
		return TemperatureStress{Level: "unknown", Score: 0}
	}

	temp := weather.Temperature
	if temp == 0 && weather.IsFallback {
		if v, ok := sensors["temperature"]; ok {
			temp = v
		} else {
			temp = 25
		}
	}
	humidity := weather.Humidity
	if humidity == 0 {
		if v, ok := sensors["humidity"]; ok {
			humidity = v
		} else {
			humidity = 60
		}
	}

	score := 0
	switch {
	case temp > 35:
		score += 40
	case temp > 30:
		score += 20
	case temp > 25:
		score += 10
	}
	switch {
	case humidity < 30:
		score += 30
	case humidity < 50:
		score += 15
	}

	level := "low"
	switch {
	case score > 50:
		level = "high"
	case score > 25:
		level = "moderate"
	}

	return TemperatureStress{
		Level:          level,
		Score:          score,
		Temperature:    temp,
		Humidity:       humidity,
		Recommendation: stressRecommendation(level),
	}
}

func stressRecommendation(level string) string {
	switch level {
	case "high":
		return "Increase irrigation frequency. Consider shade nets. Avoid midday field work."
	case "moderate":
		return "Monitor closely. Ensure adequate soil moisture."
	case "low":
		return "Conditions are favorable. Maintain regular schedule."
	}
	return "Monitor conditions"
}

func calculateMoistureStatus(sensors map[string]float64, weather *CurrentWeather) MoistureStatus {
	soilMoisture, ok := sensors["soilMoisture"]
	if !ok {
		soilMoisture, ok = sensors["moisture"]
	}

	var rainfall float64
	if weather != nil && !weather.IsFallback {
		// precipitation is folded into the merged condition string; only
		// explicit sensor rainfall counts here
		rainfall = sensors["rainfall"]
	}

	if !ok {
		return MoistureStatus{
			Status:         "unknown",
			Value:          nil,
			Recommendation: "Install soil moisture sensors for accurate monitoring",
		}
	}

	status := "optimal"
	recommendation := "Soil moisture is in optimal range"
	switch {
	case soilMoisture < 20:
		status = "low"
		recommendation = "Irrigation needed soon. Soil moisture below optimal."
	case soilMoisture < 30:
		status = "moderate"
		recommendation = "Monitor closely. Consider irrigation if no rain forecast."
	case soilMoisture > 80:
		status = "high"
		recommendation = "Avoid irrigation. Risk of waterlogging."
	}

	return MoistureStatus{
		Status:         status,
		Value:          &soilMoisture,
		Unit:           "%",
		Rainfall:       rainfall,
		Recommendation: recommendation,
	}
}

func calculateCropHealthIndex(satellite *SatelliteData) CropHealthIndex {
	if satellite == nil || satellite.Source == "simulated" {
		return CropHealthIndex{
			Index:      nil,
			Confidence: "low",
			Note:       "Satellite data not available. Using sensor data only.",
		}
	}

	ndvi := satellite.NDVI
	var healthScore float64
	switch {
	case ndvi > 0.8:
		healthScore = 90 + rand.Float64()*10
	case ndvi > 0.7:
		healthScore = 75 + rand.Float64()*15
	case ndvi > 0.6:
		healthScore = 60 + rand.Float64()*15
	case ndvi > 0.4:
		healthScore = 40 + rand.Float64()*20
	default:
		healthScore = 20 + rand.Float64()*20
	}

	index := int(math.Round(healthScore))
	return CropHealthIndex{
		Index:      &index,
		NDVI:       satellite.NDVI,
		EVI:        satellite.EVI,
		Confidence: satellite.DataQuality,
		LastUpdate: satellite.LastUpdate,
	}
}

func calculateWeatherRisk(weather *CurrentWeather) WeatherRisk {
	if weather == nil || weather.IsFallback {
		return WeatherRisk{Level: "unknown", Score: 0}
	}

	score := 0
	risks := []string{}

	switch {
	case weather.WindSpeed > 40:
		score += 30
		risks = append(risks, "High wind - avoid spraying")
	case weather.WindSpeed > 25:
		score += 15
		risks = append(risks, "Moderate wind - spray with caution")
	}

	switch {
	case weather.Temperature > 38:
		score += 25
		risks = append(risks, "Extreme heat - crop stress risk")
	case weather.Temperature < 10:
		score += 20
		risks = append(risks, "Cold stress risk")
	}

	if weather.Humidity > 85 {
		score += 20
		risks = append(risks, "High humidity - fungal disease risk")
	}

	level := "low"
	switch {
	case score > 50:
		level = "high"
	case score > 25:
		level = "moderate"
	}

	return WeatherRisk{
		Level:     level,
		Score:     score,
		Risks:     risks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// calculateConfidence weighs weather 30, satellite 40 and sensors 30
func calculateConfidence(weather *CurrentWeather, satellite *SatelliteData, sensors map[string]float64) Confidence {
	score := 0

	weatherFactor := "missing"
	if weather != nil {
		if weather.IsFallback {
			score += 15
			weatherFactor = "fallback"
		} else {
			score += 30
			weatherFactor = "live"
		}
	}

	satelliteFactor := "missing"
	if satellite != nil {
		satelliteFactor = satellite.Source
		if satellite.Source != "simulated" {
			switch satellite.DataQuality {
			case "good":
				score += 40
			case "fair":
				score += 25
			default:
				score += 10
			}
		}
	}

	sensorFactor := "missing"
	if len(sensors) > 0 {
		contribution := len(sensors) * 10
		if contribution > 30 {
			contribution = 30
		}
		score += contribution
		sensorFactor = "available"
	}

	level := "low"
	switch {
	case score > 75:
		level = "high"
	case score > 50:
		level = "moderate"
	}

	return Confidence{
		Score: score,
		Level: level,
		Factors: ConfidenceFactors{
			Weather:   weatherFactor,
			Satellite: satelliteFactor,
			Sensors:   sensorFactor,
		},
	}
}

func identifyMissingData(weather *CurrentWeather, satellite *SatelliteData, sensors map[string]float64) []string {
	missing := []string{}
	if weather == nil || weather.IsFallback {
		missing = append(missing, "real-time weather data")
	}
	if satellite == nil || satellite.Source == "simulated" {
		missing = append(missing, "satellite imagery (NDVI/EVI)")
	}
	if len(sensors) == 0 {
		missing = append(missing, "IoT sensor data")
	}
	return missing
}
