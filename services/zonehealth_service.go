package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"agrisense-http-service/config"
)

// ScoreWeights control how the factor scores blend into the overall
// zone health score. Weights must sum to 1.
type ScoreWeights struct {
	Vigor    float64
	Weather  float64
	Moisture float64
	Growth   float64
	Disease  float64
}

// DefaultScoreWeights favor visual biometrics over environmental signals
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Vigor:    0.60,
		Weather:  0.10,
		Moisture: 0.10,
		Growth:   0.10,
		Disease:  0.10,
	}
}

// ImageAnalysis is the output of a visual crop inspection fed into the
// health score. HealthScore is 0-100.
type ImageAnalysis struct {
	HealthScore     *int     `json:"healthScore,omitempty"`
	Issues          []string `json:"issues,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ZoneHealthParams are the inputs for one health calculation
type ZoneHealthParams struct {
	ZoneID          string
	Lat             string
	Lon             string
	CropType        string
	DaysAfterSowing int
	SensorData      map[string]float64
	ImageAnalysis   *ImageAnalysis
}

// VigorScore is the vegetation vigor factor
type VigorScore struct {
	Score      int      `json:"score"`
	Confidence string   `json:"confidence"`
	Factors    []string `json:"factors"`
	NDVI       *float64 `json:"ndvi"`
}

// WeatherStressScore is the inverted weather stress factor
type WeatherStressScore struct {
	Score          int      `json:"score"`
	Level          string   `json:"level"`
	Factors        []string `json:"factors"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// MoistureScore is the soil moisture factor
type MoistureScore struct {
	Score          int      `json:"score"`
	Status         string   `json:"status"`
	Value          *float64 `json:"value,omitempty"`
	Factors        []string `json:"factors"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// GrowthStageScore is the stage alignment factor
type GrowthStageScore struct {
	Score           int      `json:"score"`
	Stage           string   `json:"stage"`
	DaysInStage     int      `json:"daysInStage,omitempty"`
	Factors         []string `json:"factors"`
	CriticalFactors []string `json:"criticalFactors,omitempty"`
}

// DiseaseSummary names one predicted disease and its controls
type DiseaseSummary struct {
	Name            string   `json:"name"`
	Level           string   `json:"level"`
	ControlMeasures []string `json:"controlMeasures"`
}

// DiseaseScore is the inverted disease risk factor
type DiseaseScore struct {
	Score     int              `json:"score"`
	Risk      string           `json:"risk"`
	RiskCount int              `json:"riskCount,omitempty"`
	Factors   []string         `json:"factors"`
	Diseases  []DiseaseSummary `json:"diseases"`
}

// ImpactFactor shows how one factor moved the overall score
type ImpactFactor struct {
	Label  string `json:"label"`
	Value  int    `json:"value"`
	Impact int    `json:"impact"`
	Color  string `json:"color"`
}

// HealthLevel is the display classification of a score
type HealthLevel struct {
	Level string `json:"level"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

// Trend is the score direction over time
type Trend struct {
	Direction string `json:"direction"`
	Change    int    `json:"change"`
	Icon      string `json:"icon"`
}

// RootCause is the factor dragging the score down the most
type RootCause struct {
	Label     string `json:"label"`
	Impact    int    `json:"impact"`
	Status    string `json:"status"`
	YieldRisk string `json:"yieldRisk"`
}

// HealthRecommendation is one actionable step from the health engine
type HealthRecommendation struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Action   string `json:"action"`
	Timing   string `json:"timing"`
	Source   string `json:"source,omitempty"`
}

// HealthBreakdown holds the five factor scores
type HealthBreakdown struct {
	CropVigor     *VigorScore         `json:"cropVigor,omitempty"`
	WeatherStress *WeatherStressScore `json:"weatherStress,omitempty"`
	SoilMoisture  *MoistureScore      `json:"soilMoisture,omitempty"`
	GrowthStage   *GrowthStageScore   `json:"growthStage,omitempty"`
	DiseaseRisk   *DiseaseScore       `json:"diseaseRisk,omitempty"`
}

// ZoneHealth is the full 0-100 health report for a field zone
type ZoneHealth struct {
	ZoneID               string                 `json:"zoneId"`
	OverallScore         int                    `json:"overallScore"`
	HealthLevel          HealthLevel            `json:"healthLevel"`
	Trend                Trend                  `json:"trend"`
	TechnicalExplanation string                 `json:"technicalExplanation,omitempty"`
	PrimaryRootCause     *RootCause             `json:"primaryRootCause,omitempty"`
	ImpactFactors        []ImpactFactor         `json:"impactFactors,omitempty"`
	Confidence           map[string]int         `json:"confidence"`
	Breakdown            HealthBreakdown        `json:"breakdown"`
	Recommendations      []HealthRecommendation `json:"recommendations"`
	Timestamp            string                 `json:"timestamp"`
	IsFallback           bool                   `json:"isFallback,omitempty"`
}

// ZoneHealthServiceInterface computes per-zone health scores. The
// calculation never fails; missing inputs degrade to neutral factor
// scores and total failure yields the score-50 fallback.
type ZoneHealthServiceInterface interface {
	CalculateZoneHealth(ctx context.Context, params ZoneHealthParams) *ZoneHealth
}

// ZoneHealthService implements ZoneHealthServiceInterface over the
// fusion layer and the crop ontology
type ZoneHealthService struct {
	fusion   FusionServiceInterface
	ontology OntologyServiceInterface
	weights  ScoreWeights
}

// NewZoneHealthService builds the engine with the default weights
func NewZoneHealthService(fusion FusionServiceInterface, ontology OntologyServiceInterface) *ZoneHealthService {
	return NewZoneHealthServiceWithWeights(fusion, ontology, DefaultScoreWeights())
}

// NewZoneHealthServiceWithWeights builds the engine with custom weights
func NewZoneHealthServiceWithWeights(fusion FusionServiceInterface, ontology OntologyServiceInterface, weights ScoreWeights) *ZoneHealthService {
	return &ZoneHealthService{fusion: fusion, ontology: ontology, weights: weights}
}

// CalculateZoneHealth runs the full scoring pipeline for one zone
func (s *ZoneHealthService) CalculateZoneHealth(ctx context.Context, params ZoneHealthParams) (health *ZoneHealth) {
	defer func() {
		if r := recover(); r != nil {
			config.Error("Zone health calculation panic for %s: %v", params.ZoneID, r)
			health = fallbackHealth(params.ZoneID)
		}
	}()

	fused := s.fusion.FuseZoneData(ctx, params.Lat, params.Lon, params.ZoneID, params.SensorData)

	vigor := calculateVigorScore(fused.Satellite, params.ImageAnalysis)
	stress := calculateStressScore(fused.Intelligence.TemperatureStress)
	moisture := calculateMoistureScore(fused.Intelligence.MoistureStatus)
	growth := s.calculateGrowthScore(params.CropType, params.DaysAfterSowing, fused)
	disease := s.calculateDiseaseScore(params.CropType, fused.Weather, params.DaysAfterSowing, params.ImageAnalysis)

	w := s.weights
	overall := int(math.Round(
		float64(vigor.Score)*w.Vigor +
			float64(stress.Score)*w.Weather +
			float64(moisture.Score)*w.Moisture +
			float64(growth.Score)*w.Growth +
			float64(disease.Score)*w.Disease))

	impacts := []ImpactFactor{
		impactFactor("Visual Vigor", vigor.Score, w.Vigor),
		impactFactor("Thermal Stability", stress.Score, w.Weather),
		impactFactor("Soil Hydration", moisture.Score, w.Moisture),
		impactFactor("Growth Alignment", growth.Score, w.Growth),
		impactFactor("Biotic Risk", disease.Score, w.Disease),
	}

	sorted := make([]ImpactFactor, len(impacts))
	copy(sorted, impacts)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Impact < sorted[j].Impact })
	rootCause := sorted[0]

	severitySummary := ""
	switch {
	case overall >= 85:
		severitySummary = "All visual biometrics aligned with professional standards."
	case overall >= 70:
		severitySummary = fmt.Sprintf("%s showing deviation. Optimization recommended.", rootCause.Label)
	default:
		severitySummary = fmt.Sprintf("Significant deviation in %s detected via real-time analysis.", rootCause.Label)
	}

	explanation := "Biometric parameters stabilized."
	if abs(rootCause.Impact) > 1 {
		explanation = severitySummary
	}

	yieldRisk := "None - continue standard maintenance"
	switch {
	case overall < 60:
		yieldRisk = "High yield loss probable if ignored"
	case overall < 75:
		yieldRisk = "Moderate yield risk"
	case overall < 85:
		yieldRisk = "Low optimization risk"
	}

	rootStatus := "STABLE"
	if rootCause.Impact < -3 {
		rootStatus = "CRITICAL"
	}

	return &ZoneHealth{
		ZoneID:               params.ZoneID,
		OverallScore:         overall,
		HealthLevel:          healthLevel(overall),
		Trend:                Trend{Direction: "stable", Change: 0, Icon: "→"},
		TechnicalExplanation: explanation,
		PrimaryRootCause: &RootCause{
			Label:     rootCause.Label,
			Impact:    rootCause.Impact,
			Status:    rootStatus,
			YieldRisk: yieldRisk,
		},
		ImpactFactors: impacts,
		Confidence:    map[string]int{"score": fused.Confidence.Score},
		Breakdown: HealthBreakdown{
			CropVigor:     vigor,
			WeatherStress: stress,
			SoilMoisture:  moisture,
			GrowthStage:   growth,
			DiseaseRisk:   disease,
		},
		Recommendations: buildHealthRecommendations(vigor, stress, moisture, growth, disease, params.ImageAnalysis),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	}
}

func impactFactor(label string, score int, weight float64) ImpactFactor {
	impact := int(math.Round((float64(score) - 80) / 10 * weight * 10))
	color := "#FFC857"
	switch {
	case impact < -1:
		color = "#FF6B35"
	case impact > 0:
		color = "#00D09C"
	}
	return ImpactFactor{Label: label, Value: score, Impact: impact, Color: color}
}

// calculateVigorScore blends the satellite NDVI tiers with the visual
// analysis. When both exist the image carries 80% of the weight.
func calculateVigorScore(satellite *SatelliteData, image *ImageAnalysis) *VigorScore {
	var score *int
	confidence := "none"
	factors := []string{}
	var ndvi *float64

	if satellite != nil {
		v := satellite.NDVI
		ndvi = &v
		tier := 30
		switch {
		case v > 0.8:
			tier = 95
		case v > 0.6:
			tier = 75
		case v > 0.4:
			tier = 50
		}
		score = &tier
		confidence = satellite.DataQuality
		if confidence == "" {
			confidence = "moderate"
		}
		factors = append(factors, fmt.Sprintf("Satellite NDVI: %.2f", v))
	}

	if image != nil && image.HealthScore != nil {
		imageScore := *image.HealthScore
		if score != nil {
			blended := int(math.Round(float64(*score)*0.2 + float64(imageScore)*0.8))
			score = &blended
		} else {
			score = &imageScore
		}
		factors = append(factors, fmt.Sprintf("Visual AI analysis: %d%%", imageScore))
		confidence = "high"
	}

	if score == nil {
		return &VigorScore{Score: 0, Confidence: "none", Factors: []string{"Waiting for visual evidence..."}}
	}

	final := clampScore(*score)
	return &VigorScore{Score: final, Confidence: confidence, Factors: factors, NDVI: ndvi}
}

// calculateStressScore inverts weather stress: high stress is low health
func calculateStressScore(stress TemperatureStress) *WeatherStressScore {
	if stress.Level == "" || stress.Level == "unknown" {
		return &WeatherStressScore{
			Score:   70,
			Level:   "unknown",
			Factors: []string{"Weather stress data not available"},
		}
	}

	score := 95
	factors := []string{"Favorable weather conditions"}
	switch stress.Level {
	case "high":
		score = 40
		factors = []string{
			fmt.Sprintf("High temperature stress (%.1f°C)", stress.Temperature),
			fmt.Sprintf("Low humidity (%.0f%%)", stress.Humidity),
		}
	case "moderate":
		score = 70
		factors = []string{"Moderate temperature stress"}
	}

	return &WeatherStressScore{
		Score:          score,
		Level:          stress.Level,
		Factors:        factors,
		Recommendation: stress.Recommendation,
	}
}

func calculateMoistureScore(moisture MoistureStatus) *MoistureScore {
	if moisture.Status == "" || moisture.Status == "unknown" {
		return &MoistureScore{
			Score:   60,
			Status:  "unknown",
			Factors: []string{"Soil moisture data not available"},
		}
	}

	value := 0.0
	if moisture.Value != nil {
		value = *moisture.Value
	}

	score := 100
	var factor string
	switch moisture.Status {
	case "optimal":
		score = 100
		factor = fmt.Sprintf("Optimal soil moisture (%.0f%%)", value)
	case "moderate":
		score = 75
		factor = fmt.Sprintf("Acceptable soil moisture (%.0f%%)", value)
	case "low":
		score = 45
		factor = fmt.Sprintf("Low soil moisture (%.0f%%) - irrigation needed", value)
	case "high":
		score = 55
		factor = fmt.Sprintf("High soil moisture (%.0f%%) - waterlogging risk", value)
	}

	return &MoistureScore{
		Score:          score,
		Status:         moisture.Status,
		Value:          moisture.Value,
		Factors:        []string{factor},
		Recommendation: moisture.Recommendation,
	}
}

func (s *ZoneHealthService) calculateGrowthScore(cropType string, daysAfterSowing int, fused *FusedZoneData) *GrowthStageScore {
	if cropType == "" || daysAfterSowing <= 0 {
		return &GrowthStageScore{
			Score:   70,
			Stage:   "unknown",
			Factors: []string{"Growth stage data not available"},
		}
	}

	stage, err := s.ontology.GetCurrentGrowthStage(cropType, daysAfterSowing)
	if err != nil {
		return &GrowthStageScore{
			Score:   70,
			Stage:   "unknown",
			Factors: []string{err.Error()},
		}
	}

	factors := []string{fmt.Sprintf("Current stage: %s", stage.CurrentStage)}

	conditions := CurrentConditions{}
	if fused.Weather != nil && !fused.Weather.IsFallback {
		conditions.Temperature = &fused.Weather.Temperature
		conditions.Humidity = &fused.Weather.Humidity
	}
	if v, ok := fused.Sensors["soilMoisture"]; ok {
		conditions.SoilMoisture = &v
	}

	score := 100
	if assessment, err := s.ontology.CheckOptimalConditions(cropType, conditions); err == nil {
		score = assessment.OverallScore
		factors = append(factors, fmt.Sprintf("Conditions: %s", assessment.Status))
		for _, dev := range assessment.Deviations {
			factors = append(factors, fmt.Sprintf("%s: %g (optimal: %g)", dev.Factor, dev.Current, dev.Optimal))
		}
	}

	return &GrowthStageScore{
		Score:           score,
		Stage:           stage.CurrentStage,
		DaysInStage:     stage.DaysInStage,
		Factors:         factors,
		CriticalFactors: stage.CriticalFactors,
	}
}

// calculateDiseaseScore inverts predicted disease risk and applies a
// flat penalty per visually confirmed issue
func (s *ZoneHealthService) calculateDiseaseScore(cropType string, weather *CurrentWeather, daysAfterSowing int, image *ImageAnalysis) *DiseaseScore {
	if cropType == "" || weather == nil || weather.IsFallback {
		return &DiseaseScore{
			Score:    80,
			Risk:     "unknown",
			Factors:  []string{"Disease risk assessment not available"},
			Diseases: []DiseaseSummary{},
		}
	}

	report, err := s.ontology.PredictDiseaseRisk(cropType, WeatherConditions{
		Temperature: weather.Temperature,
		Humidity:    weather.Humidity,
	})
	if err != nil || report.OverallRisk == "low" {
		return &DiseaseScore{
			Score:    95,
			Risk:     "low",
			Factors:  []string{"No significant disease risk detected"},
			Diseases: []DiseaseSummary{},
		}
	}

	score := 100
	factors := []string{}
	diseases := make([]DiseaseSummary, 0, len(report.Risks))
	for _, risk := range report.Risks {
		switch risk.RiskLevel {
		case "very_high":
			score -= 40
			factors = append(factors, fmt.Sprintf("Very high risk: %s", risk.Disease))
		case "high":
			score -= 25
			factors = append(factors, fmt.Sprintf("High risk: %s", risk.Disease))
		case "moderate":
			score -= 15
			factors = append(factors, fmt.Sprintf("Moderate risk: %s", risk.Disease))
		}
		diseases = append(diseases, DiseaseSummary{
			Name:            risk.Disease,
			Level:           risk.RiskLevel,
			ControlMeasures: risk.ControlMeasures,
		})
	}

	issueCount := 0
	if image != nil {
		issueCount = len(image.Issues)
		score -= issueCount * 20
		for _, issue := range image.Issues {
			factors = append(factors, fmt.Sprintf("Vision AI confirms: %s", issue))
		}
	}
	if score < 0 {
		score = 0
	}

	risk := "low"
	switch {
	case score < 40:
		risk = "high"
	case score < 70:
		risk = "moderate"
	}

	return &DiseaseScore{
		Score:     score,
		Risk:      risk,
		RiskCount: len(report.Risks) + issueCount,
		Factors:   factors,
		Diseases:  diseases,
	}
}

func buildHealthRecommendations(vigor *VigorScore, stress *WeatherStressScore, moisture *MoistureScore, growth *GrowthStageScore, disease *DiseaseScore, image *ImageAnalysis) []HealthRecommendation {
	recommendations := []HealthRecommendation{}

	if image != nil {
		for _, rec := range image.Recommendations {
			recommendations = append(recommendations, HealthRecommendation{
				Priority: "high",
				Category: "photo_analysis",
				Action:   rec,
				Timing:   "immediate",
				Source:   "AI Vision",
			})
		}
	}

	if vigor.Score < 70 {
		priority := "moderate"
		if vigor.Score < 50 {
			priority = "high"
		}
		action := "Investigate low vegetation index."
		if len(vigor.Factors) > 0 {
			action = vigor.Factors[0]
		}
		recommendations = append(recommendations, HealthRecommendation{
			Priority: priority,
			Category: "crop_vigor",
			Action:   action,
			Timing:   "immediate",
		})
	}

	if stress.Score < 60 {
		recommendations = append(recommendations, HealthRecommendation{
			Priority: "high",
			Category: "weather_stress",
			Action:   stress.Recommendation,
			Timing:   "immediate",
		})
	}

	if moisture.Score < 60 {
		recommendations = append(recommendations, HealthRecommendation{
			Priority: "urgent",
			Category: "irrigation",
			Action:   moisture.Recommendation,
			Timing:   "immediate",
		})
	}

	if disease.Score < 70 {
		for _, d := range disease.Diseases {
			priority := "high"
			timing := "next_24_hours"
			if d.Level == "very_high" {
				priority = "urgent"
				timing = "immediate"
			}
			recommendations = append(recommendations, HealthRecommendation{
				Priority: priority,
				Category: "disease_control",
				Action:   fmt.Sprintf("%s: %s", d.Name, strings.Join(d.ControlMeasures, ", ")),
				Timing:   timing,
			})
		}
	}

	if growth.Score < 70 {
		recommendations = append(recommendations, HealthRecommendation{
			Priority: "moderate",
			Category: "growth_stage",
			Action:   "Conditions not optimal for current growth stage. Review critical factors.",
			Timing:   "next_48_hours",
		})
	}

	return recommendations
}

func healthLevel(score int) HealthLevel {
	switch {
	case score >= 85:
		return HealthLevel{Level: "excellent", Color: "#00D09C", Icon: "🌟"}
	case score >= 70:
		return HealthLevel{Level: "good", Color: "#4D9FFF", Icon: "✅"}
	case score >= 50:
		return HealthLevel{Level: "moderate", Color: "#FFC857", Icon: "⚠️"}
	case score >= 30:
		return HealthLevel{Level: "poor", Color: "#FF6B35", Icon: "⚠️"}
	}
	return HealthLevel{Level: "critical", Color: "#FF3B30", Icon: "🚨"}
}

func fallbackHealth(zoneID string) *ZoneHealth {
	return &ZoneHealth{
		ZoneID:       zoneID,
		OverallScore: 50,
		HealthLevel:  HealthLevel{Level: "unknown", Color: "#808080", Icon: "❓"},
		Trend:        Trend{Direction: "unknown", Change: 0, Icon: "?"},
		Confidence:   map[string]int{"score": 0},
		Recommendations: []HealthRecommendation{{
			Priority: "high",
			Category: "data",
			Action:   "Insufficient data to calculate health score. Add sensors or satellite data.",
			Timing:   "immediate",
		}},
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		IsFallback: true,
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
