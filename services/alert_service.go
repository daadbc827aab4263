package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"agrisense-http-service/config"
	"agrisense-http-service/models"
)

// AlertServiceInterface serves weather alerts. Stored alerts win; with an
// empty table alerts are synthesized from live conditions, and when that
// yields nothing two generic informational alerts are returned.
type AlertServiceInterface interface {
	GetAlerts(ctx context.Context, lat, lon, city string) ([]models.Alert, error)
	CreateAlert(alert *models.Alert) error
}

// AlertService implements AlertServiceInterface
type AlertService struct {
	db      *gorm.DB
	weather WeatherServiceInterface
}

// NewAlertService builds the alert layer
func NewAlertService(db *gorm.DB, weather WeatherServiceInterface) *AlertService {
	return &AlertService{db: db, weather: weather}
}

// GetAlerts returns stored alerts newest-first, falling through to
// synthesis when the table is empty
func (s *AlertService) GetAlerts(ctx context.Context, lat, lon, city string) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := s.db.Order("start_time desc").Find(&alerts).Error; err != nil {
		config.Error("Alert query failed: %v", err)
		return genericAlerts(), nil
	}
	if len(alerts) > 0 {
		return alerts, nil
	}

	current := s.weather.GetCurrent(ctx, lat, lon, city)
	synthesized := SynthesizeAlerts(current)
	if len(synthesized) == 0 {
		return genericAlerts(), nil
	}
	return synthesized, nil
}

// CreateAlert stores an alert row
func (s *AlertService) CreateAlert(alert *models.Alert) error {
	if alert.StartTime.IsZero() {
		alert.StartTime = time.Now()
	}
	if alert.EndTime.IsZero() {
		alert.EndTime = alert.StartTime.Add(24 * time.Hour)
	}
	return s.db.Create(alert).Error
}

// SynthesizeAlerts derives alerts from live conditions: extreme heat,
// active precipitation and fungal-friendly humidity
func SynthesizeAlerts(current *CurrentWeather) []models.Alert {
	if current == nil || current.IsFallback {
		return nil
	}

	now := time.Now()
	alerts := []models.Alert{}

	if current.Temperature > 35 {
		alerts = append(alerts, models.Alert{
			Title:       "Heat Advisory",
			Description: fmt.Sprintf("Temperature has reached %.1f°C. Irrigate during cooler hours and avoid midday field work.", current.Temperature),
			AlertType:   "heat",
			Severity:    models.AlertSeverityWarning,
			Region:      current.Location,
			StartTime:   now,
			EndTime:     now.Add(12 * time.Hour),
			Synthesized: true,
		})
	}

	condition := strings.ToLower(current.Condition)
	if strings.Contains(condition, "rain") || strings.Contains(condition, "thunder") || strings.Contains(condition, "storm") {
		alerts = append(alerts, models.Alert{
			Title:       "Precipitation Alert",
			Description: fmt.Sprintf("Current conditions: %s. Postpone spraying and check field drainage.", current.Condition),
			AlertType:   "precipitation",
			Severity:    models.AlertSeverityWarning,
			Region:      current.Location,
			StartTime:   now,
			EndTime:     now.Add(6 * time.Hour),
			Synthesized: true,
		})
	}

	if current.Humidity > 90 {
		alerts = append(alerts, models.Alert{
			Title:       "Fungal Disease Risk",
			Description: fmt.Sprintf("Humidity at %.0f%% favors fungal pathogens. Scout susceptible crops and consider preventive measures.", current.Humidity),
			AlertType:   "fungal_risk",
			Severity:    models.AlertSeverityWarning,
			Region:      current.Location,
			StartTime:   now,
			EndTime:     now.Add(24 * time.Hour),
			Synthesized: true,
		})
	}

	return alerts
}

func genericAlerts() []models.Alert {
	now := time.Now()
	return []models.Alert{
		{
			Title:       "Weather Monitoring Active",
			Description: "No severe weather alerts for your region. Conditions are monitored continuously.",
			AlertType:   "general",
			Severity:    models.AlertSeverityInfo,
			StartTime:   now,
			EndTime:     now.Add(24 * time.Hour),
			Synthesized: true,
		},
		{
			Title:       "Seasonal Advisory",
			Description: "Review your crop calendar for upcoming stage-critical operations this week.",
			AlertType:   "general",
			Severity:    models.AlertSeverityInfo,
			StartTime:   now,
			EndTime:     now.Add(7 * 24 * time.Hour),
			Synthesized: true,
		},
	}
}
