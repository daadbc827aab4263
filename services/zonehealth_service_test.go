package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFusion returns a canned fusion payload, or nil to simulate a
// broken upstream layer
type fakeFusion struct {
	fused *FusedZoneData
}

func (f *fakeFusion) FuseZoneData(ctx context.Context, lat, lon, zoneID string, sensorData map[string]float64) *FusedZoneData {
	return f.fused
}

func (f *fakeFusion) ClearCache() {}

func healthyFusedData() *FusedZoneData {
	return &FusedZoneData{
		ZoneID:  "zone-1",
		Weather: liveWeather(25, 70, 5),
		Satellite: &SatelliteData{
			NDVI:        0.75,
			DataQuality: "good",
			Source:      "sentinel-2",
		},
		Sensors: map[string]float64{"soilMoisture": 80},
		Intelligence: ZoneIntelligence{
			TemperatureStress: TemperatureStress{Level: "low", Temperature: 25, Humidity: 70},
			MoistureStatus:    MoistureStatus{Status: "optimal", Value: f64(80)},
		},
		Confidence: Confidence{Score: 90, Level: "high"},
	}
}

func TestCalculateZoneHealthHealthyZone(t *testing.T) {
	svc := NewZoneHealthService(&fakeFusion{fused: healthyFusedData()}, NewOntologyService())

	health := svc.CalculateZoneHealth(context.Background(), ZoneHealthParams{
		ZoneID:          "zone-1",
		Lat:             "19.0760",
		Lon:             "72.8777",
		CropType:        "rice",
		DaysAfterSowing: 40,
	})

	require.NotNil(t, health)
	assert.False(t, health.IsFallback)
	// vigor 75*0.6 + stress 95*0.1 + moisture 100*0.1 + growth 100*0.1 + disease 95*0.1
	assert.Equal(t, 84, health.OverallScore)
	assert.Equal(t, "good", health.HealthLevel.Level)
	assert.Equal(t, 90, health.Confidence["score"])
	assert.Equal(t, "tillering", health.Breakdown.GrowthStage.Stage)
	assert.Equal(t, 95, health.Breakdown.DiseaseRisk.Score)
	assert.Len(t, health.ImpactFactors, 5)
}

func TestCalculateZoneHealthNeverPanics(t *testing.T) {
	// A nil fusion payload would normally crash the scoring path; the
	// calculation must degrade to the neutral fallback instead.
	svc := NewZoneHealthService(&fakeFusion{fused: nil}, NewOntologyService())

	var health *ZoneHealth
	assert.NotPanics(t, func() {
		health = svc.CalculateZoneHealth(context.Background(), ZoneHealthParams{
			ZoneID:   "zone-err",
			CropType: "rice",
		})
	})

	require.NotNil(t, health)
	assert.True(t, health.IsFallback)
	assert.Equal(t, 50, health.OverallScore)
	assert.Equal(t, "zone-err", health.ZoneID)
	assert.Equal(t, 0, health.Confidence["score"])
	require.Len(t, health.Recommendations, 1)
	assert.Equal(t, "data", health.Recommendations[0].Category)
}

func TestCalculateZoneHealthImageBlendsVigor(t *testing.T) {
	imageScore := 40
	fused := healthyFusedData()
	// blast-favorable weather so the disease engine reports a risk
	fused.Weather = liveWeather(26, 90, 5)

	svc := NewZoneHealthService(&fakeFusion{fused: fused}, NewOntologyService())

	health := svc.CalculateZoneHealth(context.Background(), ZoneHealthParams{
		ZoneID:          "zone-1",
		CropType:        "rice",
		DaysAfterSowing: 40,
		ImageAnalysis: &ImageAnalysis{
			HealthScore: &imageScore,
			Issues:      []string{"leaf spots", "yellowing"},
		},
	})

	// image 40 at 80% weight over NDVI tier 75 at 20%
	assert.Equal(t, 47, health.Breakdown.CropVigor.Score)
	assert.Equal(t, "high", health.Breakdown.CropVigor.Confidence)
	// blast at high risk costs 25, two confirmed visual issues 20 each
	assert.Equal(t, 35, health.Breakdown.DiseaseRisk.Score)
	assert.Equal(t, "high", health.Breakdown.DiseaseRisk.Risk)
	assert.Equal(t, 3, health.Breakdown.DiseaseRisk.RiskCount)
}

func TestCalculateZoneHealthMissingInputsNeutral(t *testing.T) {
	fused := &FusedZoneData{
		ZoneID:     "zone-bare",
		Weather:    &CurrentWeather{IsFallback: true},
		Confidence: Confidence{Score: 15, Level: "low"},
		Intelligence: ZoneIntelligence{
			TemperatureStress: TemperatureStress{Level: "unknown"},
			MoistureStatus:    MoistureStatus{Status: "unknown"},
		},
	}
	svc := NewZoneHealthService(&fakeFusion{fused: fused}, NewOntologyService())

	health := svc.CalculateZoneHealth(context.Background(), ZoneHealthParams{
		ZoneID:   "zone-bare",
		CropType: "rice",
	})

	// vigor 0, stress 70, moisture 60, growth 70, disease 80
	assert.Equal(t, 28, health.OverallScore)
	assert.Equal(t, "critical", health.HealthLevel.Level)
	assert.Equal(t, 0, health.Breakdown.CropVigor.Score)
	assert.Equal(t, "unknown", health.Breakdown.GrowthStage.Stage)
}

func TestImpactFactorFormula(t *testing.T) {
	// impact = round(((score-80)/10) * weight * 10)
	factor := impactFactor("Visual Vigor", 50, 0.6)
	assert.Equal(t, -18, factor.Impact)
	assert.Equal(t, "#FF6B35", factor.Color)

	positive := impactFactor("Soil Hydration", 100, 0.1)
	assert.Equal(t, 2, positive.Impact)
	assert.Equal(t, "#00D09C", positive.Color)
}

func TestHealthLevelBands(t *testing.T) {
	assert.Equal(t, "excellent", healthLevel(90).Level)
	assert.Equal(t, "good", healthLevel(70).Level)
	assert.Equal(t, "moderate", healthLevel(55).Level)
	assert.Equal(t, "poor", healthLevel(35).Level)
	assert.Equal(t, "critical", healthLevel(10).Level)
}
