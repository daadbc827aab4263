package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"agrisense-http-service/models"
)

func TestZoneFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"agrisense/zones/north-field/sensors", "north-field"},
		{"agrisense/zones/z1/sensors", "z1"},
		{"agrisense/zones/z1/actuators", ""},
		{"agrisense/zones/z1", ""},
		{"other/zones/z1/sensors", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, zoneFromTopic(tt.topic), "topic %q", tt.topic)
	}
}

func TestLatestForZoneFreshness(t *testing.T) {
	svc := &SensorService{latest: make(map[string]*models.SensorReading)}

	moisture := 41.5
	temp := 29.0
	svc.latest["z1"] = &models.SensorReading{
		ZoneID:       "z1",
		SoilMoisture: &moisture,
		Temperature:  &temp,
		ReportedAt:   time.Now().Add(-5 * time.Minute),
	}
	svc.latest["z2"] = &models.SensorReading{
		ZoneID:     "z2",
		ReportedAt: time.Now().Add(-2 * time.Hour),
	}

	fresh := svc.LatestForZone("z1")
	assert.Equal(t, map[string]float64{"soilMoisture": 41.5, "temperature": 29.0}, fresh)

	assert.Nil(t, svc.LatestForZone("z2"), "stale readings are dropped")
	assert.Nil(t, svc.LatestForZone("unknown"))
}
