package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NPK is a nutrient dose in kg per hectare
type NPK struct {
	N float64 `json:"N"`
	P float64 `json:"P"`
	K float64 `json:"K"`
}

// Range is a closed numeric interval with a preferred value
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Optimal float64 `json:"optimal,omitempty"`
}

// GrowthStage covers a day interval after sowing. MinDays/MaxDays are
// parsed from the interval label at startup.
type GrowthStage struct {
	Stage           string   `json:"stage"`
	Days            string   `json:"days"`
	CriticalFactors []string `json:"criticalFactors"`
	MinDays         int      `json:"-"`
	MaxDays         int      `json:"-"`
}

// OptimalConditions are the environmental windows a crop thrives in
type OptimalConditions struct {
	Temperature  Range `json:"temperature"`
	SoilMoisture Range `json:"soilMoisture"`
	Humidity     Range `json:"humidity"`
	PH           Range `json:"pH"`
}

// CropProfile is the static knowledge record for one crop type
type CropProfile struct {
	Name               string             `json:"name"`
	ScientificName     string             `json:"scientificName"`
	GrowthStages       []GrowthStage      `json:"growthStages"`
	OptimalConditions  OptimalConditions  `json:"optimalConditions"`
	CommonDiseases     []string           `json:"commonDiseases"`
	WaterRequirement   string             `json:"waterRequirement"`
	FertilizerSchedule map[string]NPK     `json:"fertilizerSchedule"`
}

// FavorableConditions are the weather windows that favor a disease
type FavorableConditions struct {
	Temperature      Range `json:"temperature"`
	Humidity         Range `json:"humidity"`
	LeafWetnessHours int   `json:"leafWetnessHours,omitempty"`
}

// DiseaseProfile is the static knowledge record for one disease
type DiseaseProfile struct {
	Name                string              `json:"name"`
	Crops               []string            `json:"crops"`
	Pathogen            string              `json:"pathogen"`
	FavorableConditions FavorableConditions `json:"favorableConditions"`
	Symptoms            []string            `json:"symptoms"`
	Severity            string              `json:"severity"`
	ControlMeasures     []string            `json:"controlMeasures"`
}

// RegionalAdaptation is region-level agronomy guidance
type RegionalAdaptation struct {
	Region      string                       `json:"region"`
	Climate     string                       `json:"climate"`
	MajorCrops  []string                     `json:"majorCrops"`
	Adaptations map[string]map[string]string `json:"adaptations"`
}

// StageInfo places a crop in its lifecycle on a given day
type StageInfo struct {
	CurrentStage    string   `json:"currentStage"`
	DaysInStage     int      `json:"daysInStage"`
	CriticalFactors []string `json:"criticalFactors"`
	DaysAfterSowing int      `json:"daysAfterSowing"`
}

// CurrentConditions are field measurements. Nil fields are skipped, not
// treated as zero.
type CurrentConditions struct {
	Temperature  *float64 `json:"temperature,omitempty"`
	SoilMoisture *float64 `json:"soilMoisture,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
}

// Deviation reports one measured factor outside its optimal window
type Deviation struct {
	Factor   string  `json:"factor"`
	Current  float64 `json:"current"`
	Optimal  float64 `json:"optimal"`
	Range    string  `json:"range"`
	Severity string  `json:"severity"`
}

// Recommendation is one actionable step
type Recommendation struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Timing   string `json:"timing"`
}

// ConditionAssessment scores how well current conditions suit the crop
type ConditionAssessment struct {
	OverallScore    int              `json:"overallScore"`
	Status          string           `json:"status"`
	Deviations      []Deviation      `json:"deviations"`
	Recommendations []Recommendation `json:"recommendations"`
}

// WeatherConditions are the inputs to disease risk prediction
type WeatherConditions struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
}

// DiseaseRisk is one disease whose risk score crossed the report threshold
type DiseaseRisk struct {
	Disease         string   `json:"disease"`
	RiskLevel       string   `json:"riskLevel"`
	RiskScore       int      `json:"riskScore"`
	Factors         []string `json:"factors"`
	Symptoms        []string `json:"symptoms"`
	ControlMeasures []string `json:"controlMeasures"`
	Severity        string   `json:"severity"`
}

// DiseaseRiskReport aggregates the risks for a crop under given weather
type DiseaseRiskReport struct {
	OverallRisk string        `json:"overallRisk"`
	RiskCount   int           `json:"riskCount"`
	Risks       []DiseaseRisk `json:"risks"`
	Timestamp   string        `json:"timestamp"`
}

// FertilizerRecommendation is the dose for the current growth stage
type FertilizerRecommendation struct {
	Stage         string `json:"stage"`
	Nutrients     NPK    `json:"nutrients"`
	TotalQuantity NPK    `json:"totalQuantity"`
	Unit          string `json:"unit"`
	Message       string `json:"message,omitempty"`
}

// OntologyServiceInterface is the crop knowledge base: growth stages,
// optimal condition scoring, disease risk prediction and fertilizer doses
type OntologyServiceInterface interface {
	GetCropInfo(cropType string) (*CropProfile, error)
	SupportedCrops() []string
	GetCurrentGrowthStage(cropType string, daysAfterSowing int) (*StageInfo, error)
	CheckOptimalConditions(cropType string, conditions CurrentConditions) (*ConditionAssessment, error)
	PredictDiseaseRisk(cropType string, weather WeatherConditions) (*DiseaseRiskReport, error)
	GetFertilizerRecommendation(cropType, growthStage string, areaHectares float64) (*FertilizerRecommendation, error)
	GetRegionalAdaptation(region string) (*RegionalAdaptation, error)
}

// OntologyService implements OntologyServiceInterface over in-memory
// static tables
type OntologyService struct {
	crops    map[string]CropProfile
	diseases map[string]DiseaseProfile
	regions  map[string]RegionalAdaptation
}

// NewOntologyService builds the knowledge base. Malformed stage intervals
// in the static tables panic at startup rather than fail per-request.
func NewOntologyService() *OntologyService {
	s := &OntologyService{
		crops:    cropDatabase(),
		diseases: diseaseDatabase(),
		regions:  regionalAdaptations(),
	}
	for name, crop := range s.crops {
		for i := range crop.GrowthStages {
			stage := &crop.GrowthStages[i]
			min, max, err := parseDayInterval(stage.Days)
			if err != nil {
				panic(fmt.Sprintf("ontology: crop %s stage %s: %v", name, stage.Stage, err))
			}
			stage.MinDays, stage.MaxDays = min, max
		}
		s.crops[name] = crop
	}
	return s
}

func parseDayInterval(interval string) (int, int, error) {
	parts := strings.SplitN(interval, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed day interval %q", interval)
	}
	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed day interval %q: %v", interval, err)
	}
	max, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed day interval %q: %v", interval, err)
	}
	if min > max {
		return 0, 0, fmt.Errorf("inverted day interval %q", interval)
	}
	return min, max, nil
}

// GetCropInfo returns the profile for a crop type, case-insensitive
func (s *OntologyService) GetCropInfo(cropType string) (*CropProfile, error) {
	crop, ok := s.crops[strings.ToLower(cropType)]
	if !ok {
		return nil, fmt.Errorf("crop type '%s' not found in database", cropType)
	}
	return &crop, nil
}

// SupportedCrops lists the crop types the knowledge base covers
func (s *OntologyService) SupportedCrops() []string {
	crops := make([]string, 0, len(s.crops))
	for name := range s.crops {
		crops = append(crops, name)
	}
	return crops
}

// GetCurrentGrowthStage resolves the stage covering daysAfterSowing
func (s *OntologyService) GetCurrentGrowthStage(cropType string, daysAfterSowing int) (*StageInfo, error) {
	crop, err := s.GetCropInfo(cropType)
	if err != nil {
		return nil, err
	}

	for _, stage := range crop.GrowthStages {
		if daysAfterSowing >= stage.MinDays && daysAfterSowing <= stage.MaxDays {
			return &StageInfo{
				CurrentStage:    stage.Stage,
				DaysInStage:     daysAfterSowing - stage.MinDays,
				CriticalFactors: stage.CriticalFactors,
				DaysAfterSowing: daysAfterSowing,
			}, nil
		}
	}

	return nil, fmt.Errorf("growth stage could not be determined for day %d", daysAfterSowing)
}

// CheckOptimalConditions scores conditions against the crop's optimal
// windows, starting at 100 with deviation-sized penalties
func (s *OntologyService) CheckOptimalConditions(cropType string, conditions CurrentConditions) (*ConditionAssessment, error) {
	crop, err := s.GetCropInfo(cropType)
	if err != nil {
		return nil, err
	}

	optimal := crop.OptimalConditions
	deviations := []Deviation{}
	score := 100

	if conditions.Temperature != nil {
		temp := *conditions.Temperature
		if temp < optimal.Temperature.Min || temp > optimal.Temperature.Max {
			deviation := intervalDistance(temp, optimal.Temperature)
			severity := "moderate"
			penalty := 10
			if deviation >= 5 {
				severity = "high"
				penalty = 20
			}
			deviations = append(deviations, Deviation{
				Factor:   "temperature",
				Current:  temp,
				Optimal:  optimal.Temperature.Optimal,
				Range:    fmt.Sprintf("%g-%g°C", optimal.Temperature.Min, optimal.Temperature.Max),
				Severity: severity,
			})
			score -= penalty
		}
	}

	if conditions.SoilMoisture != nil {
		moisture := *conditions.SoilMoisture
		if moisture < optimal.SoilMoisture.Min || moisture > optimal.SoilMoisture.Max {
			deviation := intervalDistance(moisture, optimal.SoilMoisture)
			severity := "moderate"
			penalty := 15
			if deviation >= 15 {
				severity = "high"
				penalty = 25
			}
			deviations = append(deviations, Deviation{
				Factor:   "soilMoisture",
				Current:  moisture,
				Optimal:  optimal.SoilMoisture.Optimal,
				Range:    fmt.Sprintf("%g-%g%%", optimal.SoilMoisture.Min, optimal.SoilMoisture.Max),
				Severity: severity,
			})
			score -= penalty
		}
	}

	if conditions.Humidity != nil {
		humidity := *conditions.Humidity
		if humidity < optimal.Humidity.Min || humidity > optimal.Humidity.Max {
			deviation := intervalDistance(humidity, optimal.Humidity)
			severity := "moderate"
			penalty := 8
			if deviation >= 20 {
				severity = "high"
				penalty = 15
			}
			deviations = append(deviations, Deviation{
				Factor:   "humidity",
				Current:  humidity,
				Optimal:  optimal.Humidity.Optimal,
				Range:    fmt.Sprintf("%g-%g%%", optimal.Humidity.Min, optimal.Humidity.Max),
				Severity: severity,
			})
			score -= penalty
		}
	}

	if score < 0 {
		score = 0
	}

	status := "suboptimal"
	switch {
	case score >= 80:
		status = "optimal"
	case score > 60:
		status = "acceptable"
	}

	return &ConditionAssessment{
		OverallScore:    score,
		Status:          status,
		Deviations:      deviations,
		Recommendations: generateRecommendations(deviations),
	}, nil
}

// intervalDistance is the distance to the nearest interval bound
func intervalDistance(v float64, r Range) float64 {
	return math.Min(math.Abs(v-r.Min), math.Abs(v-r.Max))
}

// PredictDiseaseRisk scores each of the crop's common diseases against
// the current weather. Temperature and humidity matches score 35 points
// each, leaf wetness from rainfall 30; only risks above 50 are reported.
func (s *OntologyService) PredictDiseaseRisk(cropType string, weather WeatherConditions) (*DiseaseRiskReport, error) {
	crop, err := s.GetCropInfo(cropType)
	if err != nil {
		return nil, err
	}

	risks := []DiseaseRisk{}
	for _, diseaseKey := range crop.CommonDiseases {
		disease, ok := s.diseases[diseaseKey]
		if !ok {
			continue
		}

		favorable := disease.FavorableConditions
		riskScore := 0
		factors := []string{}

		if weather.Temperature >= favorable.Temperature.Min && weather.Temperature <= favorable.Temperature.Max {
			riskScore += 35
			factors = append(factors, "favorable temperature")
		}
		if weather.Humidity >= favorable.Humidity.Min && weather.Humidity <= favorable.Humidity.Max {
			riskScore += 35
			factors = append(factors, "high humidity")
		}
		if favorable.LeafWetnessHours > 0 && weather.Rainfall > 0 {
			riskScore += 30
			factors = append(factors, "leaf wetness from rain")
		}

		if riskScore > 50 {
			level := "moderate"
			switch {
			case riskScore > 80:
				level = "very_high"
			case riskScore > 60:
				level = "high"
			}
			risks = append(risks, DiseaseRisk{
				Disease:         disease.Name,
				RiskLevel:       level,
				RiskScore:       riskScore,
				Factors:         factors,
				Symptoms:        disease.Symptoms,
				ControlMeasures: disease.ControlMeasures,
				Severity:        disease.Severity,
			})
		}
	}

	overall := "low"
	if len(risks) > 0 {
		overall = "detected"
	}

	return &DiseaseRiskReport{
		OverallRisk: overall,
		RiskCount:   len(risks),
		Risks:       risks,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func generateRecommendations(deviations []Deviation) []Recommendation {
	recommendations := []Recommendation{}

	for _, deviation := range deviations {
		switch deviation.Factor {
		case "temperature":
			if deviation.Current > deviation.Optimal {
				priority := "moderate"
				if deviation.Severity == "high" {
					priority = "urgent"
				}
				recommendations = append(recommendations, Recommendation{
					Action:   "Increase irrigation frequency to cool soil",
					Priority: priority,
					Timing:   "immediate",
				})
			} else {
				recommendations = append(recommendations, Recommendation{
					Action:   "Delay irrigation to avoid cold stress",
					Priority: "moderate",
					Timing:   "next_24_hours",
				})
			}

		case "soilMoisture":
			if deviation.Current < deviation.Optimal {
				priority := "high"
				if deviation.Severity == "high" {
					priority = "urgent"
				}
				recommendations = append(recommendations, Recommendation{
					Action:   fmt.Sprintf("Irrigate immediately. Target: %g%% moisture", deviation.Optimal),
					Priority: priority,
					Timing:   "immediate",
				})
			} else {
				recommendations = append(recommendations, Recommendation{
					Action:   "Stop irrigation. Risk of waterlogging",
					Priority: "urgent",
					Timing:   "immediate",
				})
			}

		case "humidity":
			if deviation.Current > deviation.Optimal {
				recommendations = append(recommendations, Recommendation{
					Action:   "Monitor for fungal diseases. Consider preventive fungicide",
					Priority: "moderate",
					Timing:   "next_48_hours",
				})
			}
		}
	}

	return recommendations
}

// GetFertilizerRecommendation matches the growth stage name against the
// crop's fertilizer schedule and scales the dose by area
func (s *OntologyService) GetFertilizerRecommendation(cropType, growthStage string, areaHectares float64) (*FertilizerRecommendation, error) {
	crop, err := s.GetCropInfo(cropType)
	if err != nil {
		return nil, err
	}
	if areaHectares <= 0 {
		areaHectares = 1
	}

	stageName := strings.ReplaceAll(strings.ToLower(growthStage), "_", "")
	for stage, nutrients := range crop.FertilizerSchedule {
		if strings.Contains(stageName, stage) {
			return &FertilizerRecommendation{
				Stage:     stage,
				Nutrients: nutrients,
				TotalQuantity: NPK{
					N: nutrients.N * areaHectares,
					P: nutrients.P * areaHectares,
					K: nutrients.K * areaHectares,
				},
				Unit: "kg/hectare",
			}, nil
		}
	}

	return &FertilizerRecommendation{Message: "No fertilizer needed at this stage"}, nil
}

// GetRegionalAdaptation returns region-level agronomy guidance
func (s *OntologyService) GetRegionalAdaptation(region string) (*RegionalAdaptation, error) {
	adaptation, ok := s.regions[strings.ToLower(region)]
	if !ok {
		return nil, fmt.Errorf("region '%s' not found in database", region)
	}
	return &adaptation, nil
}
