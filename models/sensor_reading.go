package models

import (
	"time"
)

// SensorReading is the latest telemetry snapshot for a zone, published by
// field hardware over MQTT. Values are percentages except temperature (°C).
type SensorReading struct {
	BaseModel
	ZoneID       string    `gorm:"type:varchar(50);index;not null" json:"zone_id"`
	SoilMoisture *float64  `json:"soil_moisture,omitempty"`
	Temperature  *float64  `json:"temperature,omitempty"`
	Humidity     *float64  `json:"humidity,omitempty"`
	SoilPH       *float64  `json:"soil_ph,omitempty"`
	ReportedAt   time.Time `gorm:"index" json:"reported_at"`
}

// ToMap flattens the reading into the loose sensor map the fusion layer
// consumes, skipping fields the hardware did not report.
func (r *SensorReading) ToMap() map[string]float64 {
	m := make(map[string]float64)
	if r.SoilMoisture != nil {
		m["soilMoisture"] = *r.SoilMoisture
	}
	if r.Temperature != nil {
		m["temperature"] = *r.Temperature
	}
	if r.Humidity != nil {
		m["humidity"] = *r.Humidity
	}
	if r.SoilPH != nil {
		m["soilPH"] = *r.SoilPH
	}
	return m
}
