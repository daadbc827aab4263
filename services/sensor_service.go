package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"agrisense-http-service/config"
	"agrisense-http-service/models"
)

// TopicZoneSensors is the telemetry topic; the wildcard segment is the
// zone ID.
const TopicZoneSensors = "agrisense/zones/+/sensors"

// sensorStaleness bounds how old a reading may be before the fusion
// layer stops trusting it
const sensorStaleness = 30 * time.Minute

// sensorPayload is the wire format field hardware publishes
type sensorPayload struct {
	SoilMoisture *float64 `json:"soilMoisture,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
	SoilPH       *float64 `json:"soilPH,omitempty"`
	ReportedAt   string   `json:"reportedAt,omitempty"`
}

// SensorServiceInterface receives zone telemetry over MQTT and exposes
// the freshest reading per zone
type SensorServiceInterface interface {
	Connect() error
	Disconnect()
	LatestForZone(zoneID string) map[string]float64
}

// SensorService implements SensorServiceInterface over paho MQTT. The
// latest reading per zone lives in memory and every reading is appended
// to the sensor_readings table.
type SensorService struct {
	db     *gorm.DB
	config *config.Config
	client mqtt.Client

	mu     sync.RWMutex
	latest map[string]*models.SensorReading
}

// NewSensorService builds the telemetry subscriber. Connect is a
// separate step so a missing broker URL can skip it cleanly.
func NewSensorService(db *gorm.DB, cfg *config.Config) *SensorService {
	s := &SensorService{
		db:     db,
		config: cfg,
		latest: make(map[string]*models.SensorReading),
	}
	s.setupClient()
	return s
}

func (s *SensorService) setupClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.config.MQTTBrokerURL)
	// Unique client ID so multiple instances do not kick each other off
	opts.SetClientID(fmt.Sprintf("%s-%s", s.config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	if s.config.MQTTUsername != "" {
		opts.SetUsername(s.config.MQTTUsername)
		opts.SetPassword(s.config.MQTTPassword)
	}

	opts.SetOnConnectHandler(func(client mqtt.Client) {
		config.Info("MQTT connected to %s", s.config.MQTTBrokerURL)
		if token := client.Subscribe(TopicZoneSensors, 1, s.handleSensorMessage); token.Wait() && token.Error() != nil {
			config.Error("MQTT subscribe failed: %v", token.Error())
		}
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		config.Warning("MQTT connection lost: %v", err)
	})

	s.client = mqtt.NewClient(opts)
}

// Connect dials the broker and subscribes to the telemetry topic
func (s *SensorService) Connect() error {
	if token := s.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

// Disconnect closes the broker connection
func (s *SensorService) Disconnect() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
}

func (s *SensorService) handleSensorMessage(client mqtt.Client, msg mqtt.Message) {
	zoneID := zoneFromTopic(msg.Topic())
	if zoneID == "" {
		config.Warning("Sensor message on unexpected topic %s", msg.Topic())
		return
	}

	var payload sensorPayload
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		config.Warning("Malformed sensor payload for zone %s: %v", zoneID, err)
		return
	}

	reportedAt := time.Now()
	if payload.ReportedAt != "" {
		if t, err := time.Parse(time.RFC3339, payload.ReportedAt); err == nil {
			reportedAt = t
		}
	}

	reading := &models.SensorReading{
		ZoneID:       zoneID,
		SoilMoisture: payload.SoilMoisture,
		Temperature:  payload.Temperature,
		Humidity:     payload.Humidity,
		SoilPH:       payload.SoilPH,
		ReportedAt:   reportedAt,
	}

	s.mu.Lock()
	s.latest[zoneID] = reading
	s.mu.Unlock()

	if s.db != nil {
		if err := s.db.Create(reading).Error; err != nil {
			config.Warning("Sensor reading persist failed for zone %s: %v", zoneID, err)
		}
	}
}

// LatestForZone returns the freshest reading for a zone as a sensor map,
// or nil when nothing recent enough is known
func (s *SensorService) LatestForZone(zoneID string) map[string]float64 {
	s.mu.RLock()
	reading, ok := s.latest[zoneID]
	s.mu.RUnlock()

	if !ok || time.Since(reading.ReportedAt) > sensorStaleness {
		return nil
	}
	return reading.ToMap()
}

func zoneFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "agrisense" || parts[1] != "zones" || parts[3] != "sensors" {
		return ""
	}
	return parts[2]
}
