package models

import (
	"time"
)

// AlertSeverity classifies how urgent a weather alert is
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Alert represents a weather alert, either stored by an upstream feed or
// synthesized from live conditions when the table is empty
type Alert struct {
	BaseModel
	Title       string        `gorm:"type:varchar(100);not null" json:"title"`
	Description string        `gorm:"type:varchar(500)" json:"description"`
	AlertType   string        `gorm:"type:varchar(30)" json:"alert_type"` // heat/precipitation/fungal_risk/general
	Severity    AlertSeverity `gorm:"type:varchar(20);default:'info'" json:"severity"`
	Region      string        `gorm:"type:varchar(100)" json:"region"`
	StartTime   time.Time     `gorm:"index" json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Synthesized bool          `gorm:"-" json:"synthesized,omitempty"` // true for alerts derived from live weather, never persisted
}
