package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func TestSupportedCrops(t *testing.T) {
	svc := NewOntologyService()
	crops := svc.SupportedCrops()
	assert.Len(t, crops, 4)
	assert.Contains(t, crops, "rice")
	assert.Contains(t, crops, "wheat")
	assert.Contains(t, crops, "cotton")
	assert.Contains(t, crops, "tomato")
}

func TestGetCropInfoUnknownType(t *testing.T) {
	svc := NewOntologyService()
	_, err := svc.GetCropInfo("banana")
	assert.Error(t, err)
}

func TestGetCurrentGrowthStage(t *testing.T) {
	svc := NewOntologyService()

	tests := []struct {
		crop string
		days int
		want string
	}{
		{"rice", 10, "germination"},
		{"rice", 40, "tillering"},
		{"wheat", 5, "germination"},
		{"tomato", 100, "fruit_development"},
	}
	for _, tt := range tests {
		stage, err := svc.GetCurrentGrowthStage(tt.crop, tt.days)
		require.NoError(t, err, "%s day %d", tt.crop, tt.days)
		assert.Equal(t, tt.want, stage.CurrentStage, "%s day %d", tt.crop, tt.days)
		assert.Equal(t, tt.days, stage.DaysAfterSowing)
	}
}

func TestCheckOptimalConditionsPerfect(t *testing.T) {
	svc := NewOntologyService()
	assessment, err := svc.CheckOptimalConditions("rice", CurrentConditions{
		Temperature:  f64(25),
		SoilMoisture: f64(80),
		Humidity:     f64(70),
	})
	require.NoError(t, err)
	assert.Equal(t, 100, assessment.OverallScore)
	assert.Equal(t, "optimal", assessment.Status)
	assert.Empty(t, assessment.Deviations)
}

func TestCheckOptimalConditionsHeatStressedRice(t *testing.T) {
	// 40C is well past the rice temperature window; moisture 80 and
	// humidity 70 are in range. Only the severe heat penalty applies
	// and the score stays inside the optimal band.
	svc := NewOntologyService()
	assessment, err := svc.CheckOptimalConditions("rice", CurrentConditions{
		Temperature:  f64(40),
		SoilMoisture: f64(80),
		Humidity:     f64(70),
	})
	require.NoError(t, err)
	assert.Equal(t, 80, assessment.OverallScore)
	assert.Equal(t, "optimal", assessment.Status)
	require.Len(t, assessment.Deviations, 1)
	assert.Equal(t, "temperature", assessment.Deviations[0].Factor)
	assert.Equal(t, "high", assessment.Deviations[0].Severity)
	require.NotEmpty(t, assessment.Recommendations)
	assert.Equal(t, "urgent", assessment.Recommendations[0].Priority)
}

func TestCheckOptimalConditionsDrySoil(t *testing.T) {
	svc := NewOntologyService()
	assessment, err := svc.CheckOptimalConditions("rice", CurrentConditions{
		Temperature:  f64(25),
		SoilMoisture: f64(30),
		Humidity:     f64(70),
	})
	require.NoError(t, err)
	// Moisture 30 is 50 points under the optimum, the severe penalty applies
	assert.Equal(t, 75, assessment.OverallScore)
	assert.Equal(t, "acceptable", assessment.Status)
	require.Len(t, assessment.Deviations, 1)
	assert.Equal(t, "soilMoisture", assessment.Deviations[0].Factor)
	assert.Equal(t, "Irrigate immediately. Target: 80% moisture", assessment.Recommendations[0].Action)
}

func TestCheckOptimalConditionsNilFieldsSkipped(t *testing.T) {
	svc := NewOntologyService()
	assessment, err := svc.CheckOptimalConditions("wheat", CurrentConditions{})
	require.NoError(t, err)
	assert.Equal(t, 100, assessment.OverallScore)
	assert.Empty(t, assessment.Deviations)
}

func TestPredictDiseaseRiskBlastWeather(t *testing.T) {
	svc := NewOntologyService()
	report, err := svc.PredictDiseaseRisk("rice", WeatherConditions{
		Temperature: 26,
		Humidity:    90,
		Rainfall:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, "detected", report.OverallRisk)
	require.NotEmpty(t, report.Risks)

	blast := report.Risks[0]
	assert.Equal(t, 100, blast.RiskScore)
	assert.Equal(t, "very_high", blast.RiskLevel)
	assert.Contains(t, blast.Factors, "favorable temperature")
	assert.Contains(t, blast.Factors, "high humidity")
	assert.Contains(t, blast.Factors, "leaf wetness from rain")
}

func TestPredictDiseaseRiskDryHeat(t *testing.T) {
	svc := NewOntologyService()
	report, err := svc.PredictDiseaseRisk("rice", WeatherConditions{
		Temperature: 40,
		Humidity:    30,
		Rainfall:    0,
	})
	require.NoError(t, err)
	assert.Equal(t, "low", report.OverallRisk)
	assert.Zero(t, report.RiskCount)
}

func TestGetFertilizerRecommendationScalesByArea(t *testing.T) {
	svc := NewOntologyService()
	rec, err := svc.GetFertilizerRecommendation("rice", "tillering", 2)
	require.NoError(t, err)
	assert.Equal(t, "tillering", rec.Stage)
	assert.Equal(t, rec.Nutrients.N*2, rec.TotalQuantity.N)
	assert.Equal(t, "kg/hectare", rec.Unit)
}

func TestGetFertilizerRecommendationUnknownStage(t *testing.T) {
	svc := NewOntologyService()
	rec, err := svc.GetFertilizerRecommendation("rice", "dormancy", 1)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.Message)
}

func TestGetRegionalAdaptation(t *testing.T) {
	svc := NewOntologyService()
	adaptation, err := svc.GetRegionalAdaptation("punjab")
	require.NoError(t, err)
	assert.NotEmpty(t, adaptation.MajorCrops)

	_, err = svc.GetRegionalAdaptation("atlantis")
	assert.Error(t, err)
}
