package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrisense-http-service/models"
)

func TestSynthesizeAlertsSevereConditions(t *testing.T) {
	current := &CurrentWeather{
		Temperature: 38,
		Humidity:    95,
		Condition:   "Light rain",
		Location:    "Mumbai",
	}

	alerts := SynthesizeAlerts(current)
	require.Len(t, alerts, 3)

	types := make([]string, 0, 3)
	for _, alert := range alerts {
		types = append(types, alert.AlertType)
		assert.True(t, alert.Synthesized)
		assert.Equal(t, models.AlertSeverityWarning, alert.Severity)
		assert.Equal(t, "Mumbai", alert.Region)
	}
	assert.Equal(t, []string{"heat", "precipitation", "fungal_risk"}, types)
}

func TestSynthesizeAlertsCalmConditions(t *testing.T) {
	current := &CurrentWeather{
		Temperature: 28,
		Humidity:    60,
		Condition:   "Sunny",
	}
	assert.Empty(t, SynthesizeAlerts(current))
}

func TestSynthesizeAlertsThunderstorm(t *testing.T) {
	current := &CurrentWeather{
		Temperature: 30,
		Humidity:    80,
		Condition:   "Thundery outbreaks",
	}
	alerts := SynthesizeAlerts(current)
	require.Len(t, alerts, 1)
	assert.Equal(t, "precipitation", alerts[0].AlertType)
}

func TestSynthesizeAlertsFallbackWeatherSkipped(t *testing.T) {
	assert.Nil(t, SynthesizeAlerts(&CurrentWeather{IsFallback: true, Temperature: 0}))
	assert.Nil(t, SynthesizeAlerts(nil))
}

func TestGenericAlerts(t *testing.T) {
	alerts := genericAlerts()
	require.Len(t, alerts, 2)
	for _, alert := range alerts {
		assert.Equal(t, models.AlertSeverityInfo, alert.Severity)
		assert.Equal(t, "general", alert.AlertType)
		assert.False(t, alert.EndTime.Before(alert.StartTime))
	}
}
