package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeWeatherService returns canned current weather
type fakeWeatherService struct {
	current  *CurrentWeather
	forecast []ForecastDay
}

func (f *fakeWeatherService) GetCurrent(ctx context.Context, lat, lon, city string) *CurrentWeather {
	return f.current
}

func (f *fakeWeatherService) GetForecast(ctx context.Context, lat, lon string) []ForecastDay {
	return f.forecast
}

// fakeSatellite returns canned zone imagery
type fakeSatellite struct {
	data *SatelliteData
	err  error
}

func (f *fakeSatellite) FetchZone(ctx context.Context, lat, lon, zoneID string) (*SatelliteData, error) {
	return f.data, f.err
}

func liveWeather(temp, humidity, wind float64) *CurrentWeather {
	return &CurrentWeather{
		Temperature: temp,
		Humidity:    humidity,
		WindSpeed:   wind,
		Condition:   "Sunny",
		SourceCount: 2,
	}
}

func TestFuseZoneDataFullConfidence(t *testing.T) {
	weather := &fakeWeatherService{current: liveWeather(28, 65, 10)}
	satellite := &fakeSatellite{data: &SatelliteData{
		NDVI:        0.75,
		EVI:         0.6,
		DataQuality: "good",
		Source:      "sentinel-2",
	}}

	svc := NewFusionServiceWithSatellite(testConfig(), weather, satellite)
	fused := svc.FuseZoneData(context.Background(), "19", "72", "zone-1", map[string]float64{
		"soilMoisture": 45,
		"temperature":  27,
		"humidity":     60,
	})

	// live weather 30 + good satellite 40 + three sensors capped at 30
	assert.Equal(t, 100, fused.Confidence.Score)
	assert.Equal(t, "high", fused.Confidence.Level)
	assert.Equal(t, "live", fused.Confidence.Factors.Weather)
	assert.Empty(t, fused.MissingData)
	assert.NotNil(t, fused.Intelligence.CropHealthIndex.Index)
	assert.False(t, fused.IsFallback)
}

func TestFuseZoneDataDegradedSources(t *testing.T) {
	weather := &fakeWeatherService{current: &CurrentWeather{IsFallback: true}}
	satellite := &fakeSatellite{err: errors.New("no imagery")}

	svc := NewFusionServiceWithSatellite(testConfig(), weather, satellite)
	fused := svc.FuseZoneData(context.Background(), "19", "72", "zone-2", nil)

	// fallback weather 15, no satellite, no sensors
	assert.Equal(t, 15, fused.Confidence.Score)
	assert.Equal(t, "low", fused.Confidence.Level)
	assert.Contains(t, fused.MissingData, "satellite imagery (NDVI/EVI)")
	assert.Contains(t, fused.MissingData, "IoT sensor data")
	assert.Contains(t, fused.MissingData, "real-time weather data")
	assert.Equal(t, "unknown", fused.Intelligence.MoistureStatus.Status)
	assert.True(t, fused.IsFallback, "both primary sources down marks the payload")
}

func TestFuseZoneDataSensorContributionCapped(t *testing.T) {
	weather := &fakeWeatherService{current: liveWeather(28, 65, 10)}
	satellite := &fakeSatellite{err: errors.New("no imagery")}

	svc := NewFusionServiceWithSatellite(testConfig(), weather, satellite)
	fused := svc.FuseZoneData(context.Background(), "19", "72", "zone-3", map[string]float64{
		"soilMoisture": 45, "temperature": 27, "humidity": 60, "ph": 6.5, "ec": 1.1,
	})

	// five sensors still cap at 30 points
	assert.Equal(t, 60, fused.Confidence.Score)
}

func TestFuseZoneDataCachesResult(t *testing.T) {
	weather := &fakeWeatherService{current: liveWeather(28, 65, 10)}
	satellite := &fakeSatellite{data: &SatelliteData{NDVI: 0.7, DataQuality: "good", Source: "sentinel-2"}}

	svc := NewFusionServiceWithSatellite(testConfig(), weather, satellite)
	first := svc.FuseZoneData(context.Background(), "19", "72", "zone-4", nil)
	second := svc.FuseZoneData(context.Background(), "19", "72", "zone-4", nil)
	assert.Same(t, first, second)

	svc.ClearCache()
	third := svc.FuseZoneData(context.Background(), "19", "72", "zone-4", nil)
	assert.NotSame(t, first, third)
}

func TestCalculateTemperatureStress(t *testing.T) {
	tests := []struct {
		name      string
		temp      float64
		humidity  float64
		wantScore int
		wantLevel string
	}{
		{"extreme heat and dry", 38, 25, 70, "high"},
		{"warm and dry-ish", 32, 45, 35, "moderate"},
		{"mild", 24, 60, 0, "low"},
		{"hot but humid", 36, 70, 40, "moderate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stress := calculateTemperatureStress(liveWeather(tt.temp, tt.humidity, 5), nil)
			assert.Equal(t, tt.wantScore, stress.Score)
			assert.Equal(t, tt.wantLevel, stress.Level)
		})
	}
}

func TestCalculateTemperatureStressFallbackUsesSensors(t *testing.T) {
	fallback := &CurrentWeather{IsFallback: true}
	stress := calculateTemperatureStress(fallback, map[string]float64{"temperature": 37, "humidity": 40})
	assert.Equal(t, 37.0, stress.Temperature)
	assert.Equal(t, 55, stress.Score)
	assert.Equal(t, "high", stress.Level)
}

func TestCalculateMoistureStatus(t *testing.T) {
	tests := []struct {
		moisture float64
		want     string
	}{
		{15, "low"},
		{25, "moderate"},
		{50, "optimal"},
		{85, "high"},
	}
	for _, tt := range tests {
		status := calculateMoistureStatus(map[string]float64{"soilMoisture": tt.moisture}, nil)
		assert.Equal(t, tt.want, status.Status, "moisture %v", tt.moisture)
	}
}

func TestCalculateWeatherRisk(t *testing.T) {
	risk := calculateWeatherRisk(liveWeather(39, 90, 45))
	// wind 30 + heat 25 + humidity 20
	assert.Equal(t, 75, risk.Score)
	assert.Equal(t, "high", risk.Level)
	assert.Len(t, risk.Risks, 3)

	calm := calculateWeatherRisk(liveWeather(25, 60, 5))
	assert.Equal(t, 0, calm.Score)
	assert.Equal(t, "low", calm.Level)
}

func TestCropHealthIndexSimulatedExcluded(t *testing.T) {
	index := calculateCropHealthIndex(&SatelliteData{NDVI: 0.9, Source: "simulated"})
	assert.Nil(t, index.Index)
	assert.Equal(t, "low", index.Confidence)
}
