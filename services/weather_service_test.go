package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"agrisense-http-service/config"
)

// fakeProvider is a canned upstream source for aggregator tests
type fakeProvider struct {
	name     string
	snapshot *WeatherSnapshot
	forecast []ProviderForecastDay
	err      error
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) FetchCurrent(ctx context.Context, lat, lon string) (*WeatherSnapshot, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.snapshot, nil
}

func (p *fakeProvider) FetchForecast(ctx context.Context, lat, lon string) ([]ProviderForecastDay, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.forecast, nil
}

func testConfig() *config.Config {
	return &config.Config{DefaultCity: "Mumbai"}
}

func TestGetCurrentAveragesProviders(t *testing.T) {
	primary := &fakeProvider{
		name: "weatherapi",
		snapshot: &WeatherSnapshot{
			Temperature: 30,
			Humidity:    60,
			WindSpeed:   12,
			Condition:   "Sunny",
			Source:      "WeatherAPI",
		},
	}
	secondary := &fakeProvider{
		name: "open-meteo",
		snapshot: &WeatherSnapshot{
			Temperature: 32,
			Humidity:    70,
			WindSpeed:   8,
			Condition:   "Clear",
			Source:      "Open-Meteo",
		},
	}

	svc := NewWeatherServiceWithProviders(testConfig(), primary, secondary)
	current := svc.GetCurrent(context.Background(), "19.0760", "72.8777", "Mumbai")

	assert.Equal(t, 31.0, current.Temperature)
	assert.Equal(t, 65.0, current.Humidity)
	assert.Equal(t, 10.0, current.WindSpeed)
	assert.Equal(t, 2, current.SourceCount)
	assert.Equal(t, []string{"WeatherAPI", "Open-Meteo"}, current.DataSources)
	assert.False(t, current.IsFallback)
}

func TestGetCurrentConditionPriority(t *testing.T) {
	// The first registered provider wins descriptive fields even when it
	// reports after the second.
	primary := &fakeProvider{
		name:     "weatherapi",
		snapshot: &WeatherSnapshot{Temperature: 30, Condition: "Sunny", Source: "WeatherAPI"},
	}
	secondary := &fakeProvider{
		name:     "open-meteo",
		snapshot: &WeatherSnapshot{Temperature: 30, Condition: "Overcast", Source: "Open-Meteo"},
	}

	svc := NewWeatherServiceWithProviders(testConfig(), primary, secondary)
	current := svc.GetCurrent(context.Background(), "19", "72", "Mumbai")

	assert.Equal(t, "Sunny", current.Condition)
}

func TestGetCurrentPartialFailure(t *testing.T) {
	healthy := &fakeProvider{
		name:     "open-meteo",
		snapshot: &WeatherSnapshot{Temperature: 28, Humidity: 55, Source: "Open-Meteo"},
	}
	broken := &fakeProvider{name: "weatherapi", err: errors.New("upstream timeout")}

	svc := NewWeatherServiceWithProviders(testConfig(), broken, healthy)
	current := svc.GetCurrent(context.Background(), "19", "72", "Mumbai")

	assert.Equal(t, 28.0, current.Temperature)
	assert.Equal(t, 1, current.SourceCount)
	assert.False(t, current.IsFallback)
	// No source reported a condition, the default applies
	assert.Equal(t, "Partly Cloudy", current.Condition)
}

func TestGetCurrentAllProvidersDown(t *testing.T) {
	svc := NewWeatherServiceWithProviders(testConfig(),
		&fakeProvider{name: "weatherapi", err: errors.New("down")},
		&fakeProvider{name: "open-meteo", err: errors.New("down")},
	)
	current := svc.GetCurrent(context.Background(), "19", "72", "Mumbai")

	assert.True(t, current.IsFallback)
	assert.Equal(t, 0.0, current.Temperature)
	assert.Equal(t, "Mumbai", current.Location)
	assert.NotEmpty(t, current.Error)
	assert.Empty(t, current.DataSources)
}

func TestGetForecastMergesByDay(t *testing.T) {
	humA := 70.0
	a := &fakeProvider{
		name: "weatherapi",
		forecast: []ProviderForecastDay{
			{Date: "2026-09-01", TempMax: 34, TempMin: 26, Precipitation: 80, Humidity: &humA, WindSpeed: 10, Condition: "Heavy rain"},
			{Date: "2026-09-02", TempMax: 33, TempMin: 25, Precipitation: 20, WindSpeed: 8, Condition: "Sunny"},
		},
	}
	b := &fakeProvider{
		name: "open-meteo",
		forecast: []ProviderForecastDay{
			{Date: "2026-09-01", TempMax: 32, TempMin: 24, Precipitation: 60, WindSpeed: 14},
		},
	}

	svc := NewWeatherServiceWithProviders(testConfig(), a, b)
	forecast := svc.GetForecast(context.Background(), "19", "72")

	assert.Len(t, forecast, 2)
	assert.Equal(t, 33.0, forecast[0].TempMax)
	assert.Equal(t, 25.0, forecast[0].TempMin)
	assert.Equal(t, 70.0, forecast[0].Precipitation)
	assert.Equal(t, "Heavy rain", forecast[0].Condition)
	assert.Equal(t, []string{"weatherapi", "open-meteo"}, forecast[0].DataSources)

	// Day two comes from a single source, values pass through unaveraged
	assert.Equal(t, 33.0, forecast[1].TempMax)
	assert.Equal(t, []string{"weatherapi"}, forecast[1].DataSources)
}

func TestGetForecastAllDownFallback(t *testing.T) {
	svc := NewWeatherServiceWithProviders(testConfig(),
		&fakeProvider{name: "weatherapi", err: errors.New("down")},
	)
	forecast := svc.GetForecast(context.Background(), "19", "72")

	assert.Len(t, forecast, 7)
	for _, day := range forecast {
		assert.True(t, day.IsFallback)
		assert.Equal(t, "Unavailable", day.Condition)
	}
	assert.Equal(t, "Today", forecast[0].Day)
	assert.Equal(t, "Tomorrow", forecast[1].Day)
}

func TestConditionFromPrecip(t *testing.T) {
	assert.Equal(t, "Rainy", conditionFromPrecip(75))
	assert.Equal(t, "Scattered Showers", conditionFromPrecip(50))
	assert.Equal(t, "Partly Cloudy", conditionFromPrecip(10))
}

func TestCompassDirection(t *testing.T) {
	tests := []struct {
		degrees float64
		want    string
	}{
		{0, "N"},
		{90, "E"},
		{180, "S"},
		{270, "W"},
		{225, "SW"},
		{359, "N"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompassDirection(tt.degrees), "degrees %v", tt.degrees)
	}
}

func TestAQICategory(t *testing.T) {
	assert.Equal(t, "Good", AQICategory(1))
	assert.Equal(t, "Moderate", AQICategory(2))
	assert.Equal(t, "Unhealthy", AQICategory(4))
}

func TestDewPointReasonableRange(t *testing.T) {
	dp := DewPoint(30, 70)
	assert.InDelta(t, 24.0, dp, 1.5)
	assert.Less(t, dp, 30.0)
}
